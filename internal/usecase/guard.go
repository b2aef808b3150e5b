package usecase

import (
	"storefront/internal/domain"
	"storefront/internal/notify"
)

// Guard gates screens on the session, sending the user to the login
// entry point when they do not qualify.
type Guard struct {
	navigator notify.Navigator
	loginPath string
}

func NewGuard(navigator notify.Navigator, loginPath string) *Guard {
	return &Guard{navigator: navigator, loginPath: loginPath}
}

// RequireAuthenticated passes while the session is still loading.
func (g *Guard) RequireAuthenticated(s domain.Session) error {
	if s.IsLoading {
		return nil
	}
	if !s.IsAuthenticated {
		g.navigator.Navigate(g.loginPath)
		return domain.ErrNotAuthenticated
	}
	return nil
}

func (g *Guard) RequireAdmin(s domain.Session) error {
	if err := g.RequireAuthenticated(s); err != nil || s.IsLoading {
		return err
	}
	if !s.IsAdmin() {
		g.navigator.Navigate(g.loginPath)
		return domain.ErrNotAdmin
	}
	return nil
}
