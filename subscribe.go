package pressfront

import (
	"net/http"
	"net/url"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/labstack/echo/v4"
)

// Flash messages shown after a sign-up attempt.
const (
	flashSubscribed      = "Thanks for subscribing!"
	flashAlreadySignedUp = "You're already subscribed."
	flashInvalidEmail    = "Please enter a valid email address."
	flashTooManyRequests = "Too many sign-up attempts. Please try again in a minute."
)

type subscribeForm struct {
	Email    string
	ReturnTo string
}

func (f subscribeForm) Validate() error {
	return validation.ValidateStruct(&f,
		validation.Field(&f.Email, validation.Required, validation.Length(3, 254), is.EmailFormat),
	)
}

func (a *App) handleSubscribe(c echo.Context) error {
	form := subscribeForm{
		Email:    strings.TrimSpace(c.FormValue("email")),
		ReturnTo: safeReturnPath(c.FormValue("return_to")),
	}

	msg, err := a.subscribe(c, form)
	if err != nil {
		return err
	}
	if err := addFlash(c, msg); err != nil {
		a.Logger.WarnContext(c.Request().Context(), "saving flash", "err", err)
	}
	return c.Redirect(http.StatusSeeOther, form.ReturnTo)
}

func (a *App) subscribe(c echo.Context, form subscribeForm) (string, error) {
	if !a.limiter.Allow(c.RealIP()) {
		return flashTooManyRequests, nil
	}
	if err := form.Validate(); err != nil {
		return flashInvalidEmail, nil
	}
	created, err := a.Subscribers.Add(c.Request().Context(), Subscriber{
		Email:     form.Email,
		Source:    form.ReturnTo,
		CreatedAt: a.now(),
	})
	if err != nil {
		return "", err
	}
	if !created {
		return flashAlreadySignedUp, nil
	}
	a.Logger.InfoContext(c.Request().Context(), "new subscriber", "source", form.ReturnTo)
	return flashSubscribed, nil
}

// safeReturnPath keeps redirects on this site. Anything that is not a plain
// absolute path falls back to /blog.
func safeReturnPath(s string) string {
	const fallback = "/blog"
	if !strings.HasPrefix(s, "/") || strings.HasPrefix(s, "//") || strings.HasPrefix(s, `/\`) {
		return fallback
	}
	u, err := url.Parse(s)
	if err != nil || u.Scheme != "" || u.Host != "" {
		return fallback
	}
	if u.RawQuery != "" {
		return u.Path + "?" + u.RawQuery
	}
	return u.Path
}
