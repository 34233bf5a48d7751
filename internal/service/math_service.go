package service

import "github.com/sirupsen/logrus"

// MathService exposes stateless arithmetic over two integers.
type MathService interface {
	Sum(a, b int32) int32
}

type mathService struct {
	logger logrus.FieldLogger
}

func NewMathService(logger logrus.FieldLogger) MathService {
	return &mathService{logger: logger}
}

// Sum adds two signed 32-bit integers with wraparound on overflow,
// so Sum(math.MaxInt32, 1) yields math.MinInt32.
func (s *mathService) Sum(a, b int32) int32 {
	s.logger.Infof("calculating sum of %d and %d", a, b)
	return a + b
}
