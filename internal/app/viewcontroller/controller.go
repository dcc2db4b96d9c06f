package viewcontroller

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/mergington/activities/internal/domain"
	"github.com/mergington/activities/internal/ports/out/activitiesapi"
)

const (
	nameErrorVisible   = 3 * time.Second
	emailErrorVisible  = 4 * time.Second
	outcomeVisible     = 5 * time.Second
	firstNameRequired  = "First name is required"
	lastNameRequired   = "Last name is required"
	emailDomainMessage = "Email must end with " + domain.SchoolEmailDomain

	signupFailedFallback     = "An error occurred"
	signupNetworkFailed      = "Failed to sign up. Please try again."
	unregisterFailedFallback = "Failed to unregister"
	unregisterNetworkFailed  = "Failed to unregister. Please try again."
)

type removeControl struct {
	activity domain.ActivityName
	email    string
}

func controlFor(activity domain.ActivityName, email string) removeControl {
	return removeControl{activity: activity, email: strings.ToLower(email)}
}

// Controller drives the signup page. The activities API is the only source of truth:
// the controller keeps what it last rendered and nothing else.
type Controller struct {
	api activitiesapi.Client
	log *zap.Logger

	mu       sync.Mutex
	state    State
	rendered []domain.Activity
	options  []Option
	inFlight map[removeControl]struct{}
}

func New(api activitiesapi.Client, log *zap.Logger) *Controller {
	if log == nil {
		log = zap.NewNop()
	}
	return &Controller{
		api:      api,
		log:      log,
		state:    StateIdle,
		options:  placeholderOptions(),
		inFlight: make(map[removeControl]struct{}),
	}
}

// Page returns the currently rendered page without issuing a request.
func (c *Controller) Page() Page {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pageLocked()
}

// LoadActivities fetches all activities once and replaces the rendered list and the
// selection options. On failure the list area shows LoadFailedText. No retry.
func (c *Controller) LoadActivities(ctx context.Context) Page {
	as, err := c.api.ListActivities(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.log.Error("error fetching activities", zap.Error(err))
		c.state = StateError
		c.rendered = nil
		return c.pageLocked()
	}
	c.state = StateRendered
	c.rendered = as
	c.options = buildOptions(as)
	return c.pageLocked()
}

// Unregister handles a remove control activation. The control stays disabled while its
// request is in flight; activating it again meanwhile is a no-op.
func (c *Controller) Unregister(ctx context.Context, activity domain.ActivityName, email string) Page {
	key := controlFor(activity, email)

	c.mu.Lock()
	if _, busy := c.inFlight[key]; busy {
		p := c.pageLocked()
		c.mu.Unlock()
		return p
	}
	c.inFlight[key] = struct{}{}
	c.mu.Unlock()

	_, err := c.api.Unregister(ctx, activity, email)

	c.mu.Lock()
	delete(c.inFlight, key)
	c.mu.Unlock()

	if err == nil {
		return c.LoadActivities(ctx)
	}

	msg := Message{Class: ClassError, HideAfter: outcomeVisible}
	var se *activitiesapi.StatusError
	if errors.As(err, &se) {
		msg.Text = firstNonEmpty(se.Detail, se.Message, unregisterFailedFallback)
	} else {
		c.log.Error("error unregistering",
			zap.String("activity", string(activity)),
			zap.String("email", email),
			zap.Error(err),
		)
		msg.Text = unregisterNetworkFailed
	}

	p := c.Page()
	p.Message = &msg
	return p
}

// Signup validates the form locally and, only if it passes, registers the participant.
// Validation failures keep the form values.
func (c *Controller) Signup(ctx context.Context, form SignupForm) Page {
	firstName := strings.TrimSpace(form.FirstName)
	lastName := strings.TrimSpace(form.LastName)

	if firstName == "" {
		return c.withMessage(form, Message{Text: firstNameRequired, Class: ClassError, HideAfter: nameErrorVisible})
	}
	if lastName == "" {
		return c.withMessage(form, Message{Text: lastNameRequired, Class: ClassError, HideAfter: nameErrorVisible})
	}
	if form.Email == "" || !domain.HasSchoolDomain(form.Email) {
		return c.withMessage(form, Message{Text: emailDomainMessage, Class: ClassError, HideAfter: emailErrorVisible})
	}

	text, err := c.api.Signup(ctx, domain.ActivityName(form.Activity), form.Email, firstName, lastName)
	if err == nil {
		p := c.LoadActivities(ctx)
		p.Form = SignupForm{}
		p.Message = &Message{Text: text, Class: ClassSuccess, HideAfter: outcomeVisible}
		return p
	}

	msg := Message{Class: ClassError, HideAfter: outcomeVisible}
	var se *activitiesapi.StatusError
	if errors.As(err, &se) {
		msg.Text = firstNonEmpty(se.Detail, signupFailedFallback)
	} else {
		c.log.Error("error signing up",
			zap.String("activity", form.Activity),
			zap.Error(err),
		)
		msg.Text = signupNetworkFailed
	}
	return c.withMessage(form, msg)
}

func (c *Controller) withMessage(form SignupForm, msg Message) Page {
	p := c.Page()
	p.Form = form
	p.Message = &msg
	return p
}

func (c *Controller) pageLocked() Page {
	p := Page{
		State:   c.state,
		Options: append([]Option(nil), c.options...),
	}
	if c.state == StateError {
		p.LoadError = LoadFailedText
		return p
	}
	p.Cards = buildCards(c.rendered, func(activity domain.ActivityName, email string) bool {
		_, busy := c.inFlight[controlFor(activity, email)]
		return busy
	})
	return p
}

func firstNonEmpty(vs ...string) string {
	for _, v := range vs {
		if v != "" {
			return v
		}
	}
	return ""
}
