//go:build !windows

package infra

import (
	"go.uber.org/zap"

	"github.com/eliteGoblin/focusd/steamshim/internal/domain"
)

// NotifierImpl logs fatal notifications outside Windows; there is no dialog.
type NotifierImpl struct {
	logger *zap.Logger
}

// NewNotifier creates a new notifier.
func NewNotifier(logger *zap.Logger) *NotifierImpl {
	return &NotifierImpl{logger: logger}
}

func (n *NotifierImpl) NotifyFatal(title, message string) {
	n.logger.Error(message, zap.String("title", title))
}

// Ensure NotifierImpl implements domain.Notifier.
var _ domain.Notifier = (*NotifierImpl)(nil)
