package irc

import (
	"strings"

	"github.com/ergochat/irc-go/ircmsg"
)

// Sender identifies the originator of a record.
type Sender struct {
	Nick string
	User string
	Host string
}

// String returns the sender in nick!user@host form.
func (s Sender) String() string {
	var b strings.Builder
	b.WriteString(s.Nick)
	if s.User != "" {
		b.WriteByte('!')
		b.WriteString(s.User)
	}
	if s.Host != "" {
		b.WriteByte('@')
		b.WriteString(s.Host)
	}
	return b.String()
}

// Record is one parsed protocol line received from the server.
type Record struct {
	Command string
	Params  []string
	Sender  *Sender
}

// Param returns the i-th parameter, or "" if there are not that many.
func (r *Record) Param(i int) string {
	if i < len(r.Params) {
		return r.Params[i]
	}
	return ""
}

// ParseRecord parses a single IRC line (without the trailing CRLF).
func ParseRecord(line string) (*Record, error) {
	msg, err := ircmsg.ParseLine(line)
	if err != nil {
		return nil, err
	}
	return recordFromMessage(msg), nil
}

func recordFromMessage(msg ircmsg.Message) *Record {
	rec := &Record{
		Command: strings.ToUpper(msg.Command),
		Params:  msg.Params,
	}
	if msg.Source != "" {
		if nuh, err := msg.NUH(); err == nil {
			rec.Sender = &Sender{Nick: nuh.Name, User: nuh.User, Host: nuh.Host}
		} else {
			rec.Sender = &Sender{Nick: msg.Source}
		}
	}
	return rec
}
