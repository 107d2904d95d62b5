package app

type ScoreService interface {
	Score(req ScoreRequest) (*ScoreResult, error)
	ScoreWithTrace(req ScoreRequest) (*ScoreResult, error)
}
