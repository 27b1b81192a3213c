package service

import (
	"fmt"
	"math"
	"sort"

	"github.com/skinsight/DetectService/internal/model"
)

// Храним не больше трех самых вероятных болезней на запись
const topDiseaseLimit = 3

// rankScores - floor(prob*100), сортировка по убыванию, топ-3.
// Порядок итерации по мапе случайный, поэтому до стабильной сортировки
// фиксируем порядок по имени - результат детерминирован
func rankScores(raw map[string]float64) []model.DiseaseScore {
	scored := make([]model.DiseaseScore, 0, len(raw))
	for name, prob := range raw {
		scored = append(scored, model.DiseaseScore{
			Disease:    name,
			Percentage: int(math.Floor(prob * 100)),
		})
	}

	sort.Slice(scored, func(i, j int) bool {
		return scored[i].Disease < scored[j].Disease
	})
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Percentage > scored[j].Percentage
	})

	if len(scored) > topDiseaseLimit {
		scored = scored[:topDiseaseLimit]
	}
	return scored
}

func topDiseaseDetail(diseases []model.DiseaseScore) string {
	if len(diseases) == 0 {
		return ""
	}
	return fmt.Sprintf("%s:%d", diseases[0].Disease, diseases[0].Percentage)
}
