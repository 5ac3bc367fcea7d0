package model

import (
	"fmt"
)

var (
	_ error = ConfigurationError{}
	_ error = FetchError{}
	_ error = UnsupportedAuthError{}
)

type ConfigurationError struct {
	Setting string
	Reason  string
	Err     error
}

func (err ConfigurationError) Error() string {
	msg := fmt.Sprintf("invalid configuration: %s: %s; clustering disabled", err.Setting, err.Reason)
	if err.Err != nil {
		msg += ": " + err.Err.Error()
	}
	return msg
}

func (err ConfigurationError) Unwrap() error {
	return err.Err
}

// FetchError reports a failed discovery cycle. Host never carries credentials.
type FetchError struct {
	Host string
	Err  error
}

func (err FetchError) Error() string {
	return fmt.Sprintf("fetching pods from %s: %s", err.Host, err.Err)
}

func (err FetchError) Unwrap() error {
	return err.Err
}

type UnsupportedAuthError struct {
	Mode AuthMode
}

func (err UnsupportedAuthError) Error() string {
	return fmt.Sprintf("auth mode %s is not supported", err.Mode)
}

// SkipReason explains why a snapshot entry produced no member.
type SkipReason string

const (
	SkipMalformed      SkipReason = "malformed"
	SkipNotRunning     SkipReason = "not_running"
	SkipSelf           SkipReason = "self"
	SkipInvalidAddress SkipReason = "invalid_address"
)

type Skip struct {
	Index  int
	Name   string
	Reason SkipReason
	Err    error
}
