package game

import "errors"

var (
	ErrNotAuthorized        = errors.New("caller is not a lottery admin")
	ErrAlreadyPending       = errors.New("ticket already requested and awaiting confirmation")
	ErrAlreadyConfirmed     = errors.New("ticket already confirmed for this round")
	ErrNoSuchTicket         = errors.New("user has not requested a ticket")
	ErrNotFound             = errors.New("no confirmed ticket for this round")
	ErrInsufficientPlayers  = errors.New("not enough confirmed players to draw")
	ErrInvalidPaymentMethod = errors.New("invalid payment method")
	ErrNoResults            = errors.New("no draw has been settled yet")

	ErrTimeout            = errors.New("timed out waiting for reply")
	ErrUnrecognizedMethod = errors.New("reply is not a payment method")
	ErrEmptyUsername      = errors.New("payment username is empty")
	ErrDialogueClosed     = errors.New("purchase dialogue already finished")
)
