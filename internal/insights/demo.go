package insights

import (
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/noah-isme/intervention-insights-api/internal/models"
)

// DemoInterventions and DemoProfiles name the universe of the demonstration dataset.
var (
	DemoInterventions = []string{"Reading Support", "Math Intervention", "Social Skills Training", "Behavioral Support", "Speech Therapy"}
	DemoProfiles      = []string{"Dyslexia", "ADHD", "Autism", "Processing Disorder", "Language Disorder"}
)

const demoSeed = 20240901

// DemoDataset returns a deterministic synthetic dataset. It is only served when a
// caller explicitly asks for demonstration data.
func DemoDataset(now time.Time) ([]models.InterventionSample, []models.StudentProgressRecord) {
	rng := rand.New(rand.NewSource(demoSeed))
	samples := make([]models.InterventionSample, 0, len(DemoInterventions)*len(DemoProfiles))
	for _, intervention := range DemoInterventions {
		for _, profile := range DemoProfiles {
			samples = append(samples, models.InterventionSample{
				ID:               fmt.Sprintf("demo-%s-%s", intervention, profile),
				InterventionType: intervention,
				LearningProfile:  profile,
				AverageGrowth:    round1(5 + rng.Float64()*25),
				SampleSize:       5 + rng.Intn(26),
				TimeToTarget:     float64(4 + rng.Intn(9)),
				Effectiveness:    round2(0.4 + rng.Float64()*0.55),
				IsCurrent:        true,
				RecordedAt:       now,
			})
		}
	}

	records := make([]models.StudentProgressRecord, 0, 12)
	for i := 0; i < 12; i++ {
		start := now.AddDate(0, 0, -7*(8+rng.Intn(8)))
		target := float64(20 + rng.Intn(21))
		points := make(models.ProgressPoints, 0, 8)
		value := 0.0
		for week := 0; week < 8; week++ {
			value += rng.Float64() * target / 8
			points = append(points, models.ProgressPoint{Date: start.AddDate(0, 0, 7*week), Value: round1(value)})
		}
		records = append(records, models.StudentProgressRecord{
			ID:              fmt.Sprintf("demo-student-%02d", i+1),
			Name:            fmt.Sprintf("Student %02d", i+1),
			Intervention:    DemoInterventions[i%len(DemoInterventions)],
			LearningProfile: DemoProfiles[(i/2)%len(DemoProfiles)],
			StartDate:       start,
			CurrentGrowth:   round1(value),
			TargetGrowth:    target,
			ProgressRate:    round2(value / 8),
			DataPoints:      points,
			IsCurrent:       true,
		})
	}
	return samples, records
}

func round1(v float64) float64 { return math.Round(v*10) / 10 }
func round2(v float64) float64 { return math.Round(v*100) / 100 }
