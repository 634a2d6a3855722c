package services

import (
	"fmt"
	"math/rand"
	"sync"

	"github.com/dependify/DemoeCRM/models"
)

// SimulatedResult is what an outcome strategy produces for one call
type SimulatedResult struct {
	Status          models.VoiceCallStatus
	Outcome         models.CallOutcome
	DurationSeconds int
	Transcript      string
}

// OutcomeStrategy decides how a simulated call ends. Injected so tests can
// pin the result.
type OutcomeStrategy interface {
	Draw(convert *models.Convert, script *models.CallScript) SimulatedResult
}

// randomOutcomeStrategy draws from a seeded source: roughly 70% completed,
// 20% no answer, 10% failed, mirroring observed field call rates
type randomOutcomeStrategy struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewRandomOutcomeStrategy creates a seeded outcome strategy. The same seed
// reproduces the same sequence of draws.
func NewRandomOutcomeStrategy(seed int64) OutcomeStrategy {
	return &randomOutcomeStrategy{rng: rand.New(rand.NewSource(seed))}
}

func (s *randomOutcomeStrategy) Draw(convert *models.Convert, script *models.CallScript) SimulatedResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	roll := s.rng.Float64()
	switch {
	case roll < 0.70:
		outcome := models.OutcomeInterested
		switch or := s.rng.Float64(); {
		case or < 0.50:
			outcome = models.OutcomeInterested
		case or < 0.80:
			outcome = models.OutcomeCallbackRequested
		default:
			outcome = models.OutcomeNotInterested
		}
		return SimulatedResult{
			Status:          models.CallCompleted,
			Outcome:         outcome,
			DurationSeconds: 120 + s.rng.Intn(481),
			Transcript:      simulatedTranscript(convert, script, outcome),
		}
	case roll < 0.90:
		return SimulatedResult{Status: models.CallNoAnswer}
	default:
		return SimulatedResult{Status: models.CallFailed}
	}
}

func simulatedTranscript(convert *models.Convert, script *models.CallScript, outcome models.CallOutcome) string {
	greeting := fmt.Sprintf("Agent: Good day %s, this is the follow-up team from Grace Evangelical.", convert.FirstName)
	if script != nil {
		greeting = fmt.Sprintf("Agent: Good day %s. %s", convert.FirstName, script.Content)
	}
	switch outcome {
	case models.OutcomeInterested:
		return greeting + fmt.Sprintf("\n%s: Thank you for calling, I would love to continue.", convert.FirstName)
	case models.OutcomeCallbackRequested:
		return greeting + fmt.Sprintf("\n%s: I am a bit busy now, please call me back later.", convert.FirstName)
	default:
		return greeting + fmt.Sprintf("\n%s: I am not interested at the moment, thank you.", convert.FirstName)
	}
}
