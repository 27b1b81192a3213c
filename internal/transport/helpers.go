package transport

import (
	"errors"
	"io"
	"log"

	"github.com/skinsight/DetectService/internal/model"
)

func errorCodeDefiner(err error) int {
	switch {
	case errors.Is(err, model.ErrCommon500),
		errors.Is(err, model.ErrPredictFailed):
		return 500
	case errors.Is(err, model.ErrHistoryNotFound):
		return 404
	case errors.Is(err, model.ErrIncorrectID),
		errors.Is(err, model.ErrEmptyImage),
		errors.Is(err, model.ErrUnsupportedFormat):
		return 400
	case errors.Is(err, model.ErrUnauthorized):
		return 401
	default:
		return 500
	}
}

// shapeEntry - на выходе percentage превращается обратно в дробь 0-1
func shapeEntry(entry *model.HistoryEntry) model.HistoryView {
	diseases := make([]model.DiseaseView, 0, len(entry.Diseases))
	for _, d := range entry.Diseases {
		diseases = append(diseases, model.DiseaseView{
			Disease:    d.Disease,
			Percentage: float64(d.Percentage) / 100,
			Symptoms:   d.Symptoms,
		})
	}

	return model.HistoryView{
		ID:       entry.ID,
		UserID:   entry.UserID,
		ImageURL: entry.ImageURL,
		Diseases: diseases,
	}
}

func closeFileFlow(res io.ReadCloser) {
	if res == nil {
		return
	}
	if err := res.Close(); err != nil {
		log.Println("Handler failed to close fileflow:", err)
	}
}
