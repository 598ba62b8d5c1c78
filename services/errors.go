package services

import "errors"

var (
	ErrAccountNotFound        = errors.New("account not found")
	ErrInsufficientBalance    = errors.New("insufficient balance")
	ErrAlreadyClaimedToday    = errors.New("daily reward already claimed today")
	ErrReferralAlreadyApplied = errors.New("referral bonus already applied for this account")
	ErrBotNotFound            = errors.New("bot not found")
	ErrInvalidTransition      = errors.New("invalid bot status transition")
	ErrInvalidAmount          = errors.New("amount must be positive")
)
