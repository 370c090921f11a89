package game

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/bellapacxx/inzo-lotto/models"
)

// DialogueState is a step of the ticket purchase conversation.
type DialogueState int

const (
	AwaitingMethod DialogueState = iota
	AwaitingUsername
	Complete
	TimedOut
	Aborted
)

func (s DialogueState) String() string {
	switch s {
	case AwaitingMethod:
		return "awaiting_method"
	case AwaitingUsername:
		return "awaiting_username"
	case Complete:
		return "complete"
	case TimedOut:
		return "timed_out"
	case Aborted:
		return "aborted"
	}
	return fmt.Sprintf("DialogueState(%d)", int(s))
}

// Open reports whether the dialogue still accepts replies.
func (s DialogueState) Open() bool {
	return s == AwaitingMethod || s == AwaitingUsername
}

// CancelWord aborts a purchase at any step.
const CancelWord = "cancel"

// Purchase is what a completed dialogue collected.
type Purchase struct {
	UserID   string
	Method   models.PaymentMethod
	Username string
}

// Dialogue collects a payment method and then a payment username from one
// user. Each step must be answered within the timeout or the dialogue ends as
// TimedOut and onTimeout is called with the step that expired.
type Dialogue struct {
	UserID  string
	timeout time.Duration

	mu       sync.Mutex
	state    DialogueState
	method   models.PaymentMethod
	username string
	timer    *time.Timer
	gen      int // bumped on every step so stale timers are ignored

	onTimeout func(userID string, step DialogueState)
}

// NewDialogue creates a dialogue in AwaitingMethod. Call Start to arm its timer.
func NewDialogue(userID string, timeout time.Duration, onTimeout func(userID string, step DialogueState)) *Dialogue {
	return &Dialogue{
		UserID:    userID,
		timeout:   timeout,
		state:     AwaitingMethod,
		onTimeout: onTimeout,
	}
}

// Start arms the timeout for the current step.
func (d *Dialogue) Start() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.state.Open() {
		d.armLocked()
	}
}

func (d *Dialogue) State() DialogueState {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state
}

// Feed applies one reply. Unrecognized payment methods leave the state as is
// and keep the current deadline.
func (d *Dialogue) Feed(content string) (DialogueState, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.state.Open() {
		return d.state, ErrDialogueClosed
	}

	content = strings.TrimSpace(content)
	if strings.EqualFold(content, CancelWord) {
		d.closeLocked(Aborted)
		return d.state, nil
	}

	switch d.state {
	case AwaitingMethod:
		method, ok := models.ParsePaymentMethod(content)
		if !ok {
			return d.state, ErrUnrecognizedMethod
		}
		d.method = method
		d.state = AwaitingUsername
		d.armLocked()
	case AwaitingUsername:
		if content == "" {
			return d.state, ErrEmptyUsername
		}
		d.username = content
		d.closeLocked(Complete)
	}
	return d.state, nil
}

// Method returns the chosen payment method, empty before the first step.
func (d *Dialogue) Method() models.PaymentMethod {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.method
}

// Purchase returns the collected details once the dialogue is Complete.
func (d *Dialogue) Purchase() (Purchase, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.state != Complete {
		return Purchase{}, false
	}
	return Purchase{UserID: d.UserID, Method: d.method, Username: d.username}, true
}

// Abort ends an open dialogue without creating anything.
func (d *Dialogue) Abort() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.state.Open() {
		d.closeLocked(Aborted)
	}
}

// TimeoutError wraps ErrTimeout with the step that was not answered.
func TimeoutError(step DialogueState) error {
	return fmt.Errorf("%w: %s", ErrTimeout, step)
}

func (d *Dialogue) armLocked() {
	if d.timer != nil {
		d.timer.Stop()
	}
	d.gen++
	gen := d.gen
	d.timer = time.AfterFunc(d.timeout, func() { d.fire(gen) })
}

func (d *Dialogue) fire(gen int) {
	d.mu.Lock()
	if gen != d.gen || !d.state.Open() {
		d.mu.Unlock()
		return
	}
	step := d.state
	d.closeLocked(TimedOut)
	d.mu.Unlock()

	if d.onTimeout != nil {
		d.onTimeout(d.UserID, step)
	}
}

func (d *Dialogue) closeLocked(final DialogueState) {
	d.state = final
	d.gen++
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
