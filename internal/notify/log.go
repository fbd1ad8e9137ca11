package notify

import (
	"log/slog"
)

// Log writes notifications to a slog logger.
type Log struct {
	Logger *slog.Logger
}

func (l Log) logger() *slog.Logger {
	if l.Logger == nil {
		return slog.Default()
	}
	return l.Logger
}

func (l Log) InitialiseOngoing(msg Message) {
	l.logger().Info(msg.Text(), "slot", "ongoing")
}

func (l Log) ShowOngoing(msg Message) {
	if p, ok := msg.(MsgProgress); ok {
		l.logger().Info("sync progress", "index", p.Index+1, "total", p.Total, "path", p.Path)
		return
	}
	l.logger().Info(msg.Text(), "slot", "ongoing")
}

func (l Log) ShowClearable(msg Message) {
	if f, ok := msg.(MsgFailure); ok {
		l.logger().Error("sync failed", "error", f.Err)
		return
	}
	l.logger().Info(msg.Text(), "slot", "clearable")
}
