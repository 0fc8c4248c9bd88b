package irc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRecord(t *testing.T) {
	rec, err := ParseRecord(":Q!TheQBot@CServe.quakenet.org NOTICE pladder :You are now logged in as pladderbot.")
	require.NoError(t, err)

	assert.Equal(t, "NOTICE", rec.Command)
	assert.Equal(t, []string{"pladder", "You are now logged in as pladderbot."}, rec.Params)
	require.NotNil(t, rec.Sender)
	assert.True(t, *rec.Sender == qSender)
	assert.Equal(t, "Q!TheQBot@CServe.quakenet.org", rec.Sender.String())
}

func TestParseRecordWithoutSource(t *testing.T) {
	rec, err := ParseRecord("PING :irc.example.net")
	require.NoError(t, err)

	assert.Equal(t, "PING", rec.Command)
	assert.Nil(t, rec.Sender)
	assert.Equal(t, "irc.example.net", rec.Param(0))
	assert.Equal(t, "", rec.Param(1))
}

func TestParseRecordLowercaseCommand(t *testing.T) {
	rec, err := ParseRecord(":alice!a@example.org privmsg #pladder :hi")
	require.NoError(t, err)
	assert.Equal(t, "PRIVMSG", rec.Command)
}

func TestParseRecordEmpty(t *testing.T) {
	_, err := ParseRecord("")
	assert.Error(t, err)
}

func TestSenderEquality(t *testing.T) {
	a := Sender{Nick: "Q", User: "TheQBot", Host: "CServe.quakenet.org"}
	assert.True(t, a == qSender)
	assert.False(t, Sender{Nick: "Q", User: "TheQBot", Host: "elsewhere"} == qSender)
	assert.Equal(t, "irc.example.net", Sender{Nick: "irc.example.net"}.String())
}
