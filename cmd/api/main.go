// Package main (in api-subfolder) provides launch of the whole application except worker
package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/skinsight/DetectService/internal/auth"
	"github.com/skinsight/DetectService/internal/kafka"
	"github.com/skinsight/DetectService/internal/mwlogger"
	"github.com/skinsight/DetectService/internal/predict"
	"github.com/skinsight/DetectService/internal/reference"
	"github.com/skinsight/DetectService/internal/repository"
	"github.com/skinsight/DetectService/internal/service"
	"github.com/skinsight/DetectService/internal/storage"
	"github.com/skinsight/DetectService/internal/transport"
	"github.com/wb-go/wbf/config"
	"github.com/wb-go/wbf/dbpg"
	"github.com/wb-go/wbf/ginext"
	wbfkafka "github.com/wb-go/wbf/kafka"
	"github.com/wb-go/wbf/zlog"
)

func main() {
	// инициализировать конфиг/ считать энвы
	appConfig := config.New()
	appConfig.EnableEnv("")
	if err := appConfig.LoadEnvFiles("./.env"); err != nil {
		log.Fatalf("Failed to load envs: %s\nExiting app...", err)
	}

	// стартуем логгер
	zlog.InitConsole()
	err := zlog.SetLevel("info")
	if err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	// готовим заранее слушатель прерываний - контекст для всего приложения
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// подключиться к базе
	dbConn := repository.ConnectWithRetries(appConfig, 5, 10*time.Second)
	// накатываем миграцию
	repository.MigrateWithRetries(dbConn.Master, "./migrations", 10, 15*time.Second)

	// подключиться к хранилищу
	strg := storage.NewImgStorage(appConfig, 10*time.Second)
	// создаем экземпляр репо
	repo := repository.NewPostgresHistoryRepo(dbConn)

	// справочник болезней читается один раз и дальше только читается
	refPath := appConfig.GetString("REFERENCE_PATH")
	if refPath == "" {
		refPath = "./data/diseases.json"
	}
	refData, err := reference.Load(refPath)
	if err != nil {
		log.Fatalf("Failed to load reference dataset: %v", err)
	}
	log.Printf("Reference dataset loaded: %d diseases", refData.Len())

	// клиент к внешнему сервису предсказаний - один запрос, жесткий таймаут
	predictTimeout, err := strconv.Atoi(appConfig.GetString("PREDICT_TIMEOUT_SEC"))
	if err != nil || predictTimeout <= 0 {
		predictTimeout = 30
	}
	predictor := predict.NewClient(appConfig.GetString("PREDICT_URL"), time.Duration(predictTimeout)*time.Second)

	// ждем пока кафка раздуплится
	broker := appConfig.GetString("KAFKA_BROKER")
	kafka.WaitKafkaReady(broker, 10*time.Second)
	// подключиться к кафке как продюсер
	topic := appConfig.GetString("KAFKA_TOPIC")
	kafka.InitKafkaTopics(ctx, broker, 10*time.Second, topic)
	pub := wbfkafka.NewProducer([]string{broker}, topic)

	// создаем экземпляр сервиса
	var svc HistoryAPIService = service.NewHistoryService(repo, predictor, pub, strg, refData)
	// cоздаем экземпляр хендлера HTTP
	handlers := transport.NewHistoryHandler(svc, strg)
	// сетапим сервер
	mode := appConfig.GetString("GIN_MODE")
	engine := ginext.New(mode)

	engine.GET("/ping", handlers.SimplePinger)

	// все остальное только с валидным токеном
	engine.Use(auth.NewJWTMiddleware([]byte(appConfig.GetString("JWT_SECRET"))))
	engine.POST("/detect", handlers.Detect)                    // загрузка + предсказание
	engine.GET("/history", handlers.GetAllHistory)             // список записей юзера
	engine.GET("/history/:historyId", handlers.GetOneHistory)  // одна запись с симптомами
	engine.DELETE("/history/:historyId", handlers.Delete)      // удаление записи и картинки

	srv := &http.Server{
		Addr:    ":" + appConfig.GetString("APP_PORT"),
		Handler: mwlogger.NewMWLogger(engine),
	}

	// Server launch
	go func() {
		log.Printf("Server running on http://localhost%s\n", srv.Addr)
		err := srv.ListenAndServe()
		if err != nil {
			switch {
			case errors.Is(err, http.ErrServerClosed):
				log.Println("Server gracefully stopping...")
			default:
				log.Printf("Server stopped: %v", err)
				stop()
			}
		}
	}()

	// ждем отмены контекста для запуска грейсфул закрытия соединений бд и кафки
	<-ctx.Done()

	shutdown(pub, dbConn)
	log.Println("Exiting app...")
}

func shutdown(pub *wbfkafka.Producer, dbConn *dbpg.DB) {
	log.Println("Interrupt received!!! Starting shutdown sequence...")

	// Closing Kafka connection:
	if err := pub.Close(); err != nil {
		log.Println("Failed to close Kafka-producer:", err)
	}
	log.Println("Kafka-producer connection closed.")

	// Closing DB connection
	if err := dbConn.Master.Close(); err != nil {
		log.Println("Failed to close DB-conn correctly:", err)
		return
	}
	log.Println("DBconn closed")
}
