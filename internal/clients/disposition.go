package clients

import (
	"context"

	"storefront/internal/notify"

	"github.com/sirupsen/logrus"
)

const (
	MsgSessionExpired = "Session expired. Please login again."
	MsgAccessDenied   = "Access denied. You do not have permission to perform this action."
	MsgNotFound       = "Resource not found."
	MsgServerError    = "Server error. Please try again later."
	MsgUnexpected     = "An unexpected error occurred."
)

type FailureHandler interface {
	HandleFailure(ctx context.Context, err *APIError)
}

type FailureHandlerFunc func(ctx context.Context, err *APIError)

func (f FailureHandlerFunc) HandleFailure(ctx context.Context, err *APIError) {
	f(ctx, err)
}

type CredentialClearer interface {
	Clear(ctx context.Context)
}

// Disposition is the global side effect applied to every failed call
// before the error reaches the caller.
type Disposition struct {
	credentials CredentialClearer
	notifier    notify.Notifier
	navigator   notify.Navigator
	loginPath   string
	log         *logrus.Logger
}

func NewDisposition(creds CredentialClearer, notifier notify.Notifier, navigator notify.Navigator, loginPath string, logger *logrus.Logger) *Disposition {
	if loginPath == "" {
		loginPath = "/login"
	}
	return &Disposition{
		credentials: creds,
		notifier:    notifier,
		navigator:   navigator,
		loginPath:   loginPath,
		log:         logger,
	}
}

func (d *Disposition) HandleFailure(ctx context.Context, err *APIError) {
	d.log.WithFields(logrus.Fields{
		"kind":        err.Kind,
		"status_code": err.StatusCode,
		"path":        err.Path,
	}).Debug("Applying failure disposition")

	switch err.Kind {
	case KindAuthExpired:
		// Cleared even when the caller's deadline has already passed.
		d.credentials.Clear(context.WithoutCancel(ctx))
		d.notifier.Error(MsgSessionExpired)
		d.navigator.Navigate(d.loginPath)
	case KindForbidden:
		d.notifier.Error(MsgAccessDenied)
	case KindNotFound:
		d.notifier.Error(MsgNotFound)
	case KindServerError:
		d.notifier.Error(MsgServerError)
	default:
		if err.Message != "" {
			d.notifier.Error(err.Message)
		} else {
			d.notifier.Error(MsgUnexpected)
		}
	}
}
