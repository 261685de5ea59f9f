//go:build windows

package infra

import (
	"go.uber.org/zap"
	"golang.org/x/sys/windows"

	"github.com/eliteGoblin/focusd/steamshim/internal/domain"
)

// NotifierImpl implements domain.Notifier with a blocking message box.
type NotifierImpl struct {
	logger *zap.Logger
}

// NewNotifier creates a new notifier.
func NewNotifier(logger *zap.Logger) *NotifierImpl {
	return &NotifierImpl{logger: logger}
}

// NotifyFatal shows an error dialog and waits for the operator to dismiss it.
func (n *NotifierImpl) NotifyFatal(title, message string) {
	titlePtr, err := windows.UTF16PtrFromString(title)
	if err != nil {
		n.logger.Warn("invalid dialog title", zap.Error(err))
		return
	}
	messagePtr, err := windows.UTF16PtrFromString(message)
	if err != nil {
		n.logger.Warn("invalid dialog message", zap.Error(err))
		return
	}

	if _, err := windows.MessageBox(0, messagePtr, titlePtr, windows.MB_OK|windows.MB_ICONERROR); err != nil {
		n.logger.Warn("failed to show error dialog", zap.Error(err))
	}
}

// Ensure NotifierImpl implements domain.Notifier.
var _ domain.Notifier = (*NotifierImpl)(nil)
