// Package irc runs a single IRC session: registration followed by chat relay.
//
// The registration phases run in order, each reading the same record stream
// until its completion condition arrives:
//
//	nick       NICK/USER sent, wait for 001 (RPL_WELCOME)
//	auth       PRIVMSG to Q, wait for Q's "You are now logged in" NOTICE
//	           (any other NOTICE from Q fails the session)
//	user mode  MODE sent, wait for the matching MODE echo
//	join       one JOIN per channel, wait until every channel is joined
//
// Only the nick phase is mandatory. Once registered, the session reports
// ready and reads until the server closes the connection.
//
// Two record types never reach a phase. They are handled underneath every
// phase as well as in the relay loop:
//
//	PING     answered with PONG carrying the same parameters
//	PRIVMSG  relayed to Hooks.OnPrivmsg; lines starting with the trigger
//	         prefix go to Hooks.OnTrigger and a non-empty result is sent back
//	         to the channel, or to the sender for private messages, one
//	         PRIVMSG per line of the result
package irc
