package repository

import (
	"context"
	"errors"
	"net/smtp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSMTPSender(t *testing.T) {
	var (
		gotAddr string
		gotTo   []string
		gotMsg  string
		gotAuth smtp.Auth
	)
	s := &smtpSender{
		cfg: SMTPConfig{Host: "mail.local", Port: 25, User: "u", Password: "p", From: "noreply@chat.local"},
		send: func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
			gotAddr, gotAuth, gotTo, gotMsg = addr, a, to, string(msg)
			return nil
		},
	}

	require.NoError(t, s.SendEmail(context.Background(), "bob@chat.local", "You have a notification", "hello"))
	assert.Equal(t, "mail.local:25", gotAddr)
	assert.NotNil(t, gotAuth)
	assert.Equal(t, []string{"bob@chat.local"}, gotTo)
	assert.Contains(t, gotMsg, "Subject: You have a notification\r\n")
	assert.Contains(t, gotMsg, "\r\n\r\nhello")

	assert.Error(t, s.SendEmail(context.Background(), "", "s", "b"))

	s.send = func(string, smtp.Auth, string, []string, []byte) error { return errors.New("relay down") }
	assert.Error(t, s.SendEmail(context.Background(), "bob@chat.local", "s", "b"))
}
