package service

import (
	"lingua_edu_backend/pkg/logger"

	"go.uber.org/zap"
)

// Notifier 事务提交后的通知出口。实现方不得被放进一致性关键路径，
// 调用永远发生在提交之后。
type Notifier interface {
	PlacementCompleted(userID uint, finalLevel string)
	BookingCreated(userID uint, bookingID uint)
	SeatMoved(userID uint, bookingID uint, toGroup string)
}

// LogNotifier 默认实现，只落日志。邮件/短信网关在宿主环境替换这个实现。
type LogNotifier struct{}

func NewLogNotifier() *LogNotifier {
	return &LogNotifier{}
}

func (n *LogNotifier) PlacementCompleted(userID uint, finalLevel string) {
	logger.Log.Info("placement completed",
		zap.Uint("userId", userID),
		zap.String("finalLevel", finalLevel),
	)
}

func (n *LogNotifier) BookingCreated(userID uint, bookingID uint) {
	logger.Log.Info("booking created",
		zap.Uint("userId", userID),
		zap.Uint("bookingId", bookingID),
	)
}

func (n *LogNotifier) SeatMoved(userID uint, bookingID uint, toGroup string) {
	logger.Log.Info("seat moved",
		zap.Uint("userId", userID),
		zap.Uint("bookingId", bookingID),
		zap.String("toGroup", toGroup),
	)
}
