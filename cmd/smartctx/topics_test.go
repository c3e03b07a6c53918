package main

import (
	"bytes"
	"testing"

	"github.com/sandevgo/smartctx/internal/core"
	"github.com/stretchr/testify/assert"
)

func TestPrintTopics(t *testing.T) {
	var out bytes.Buffer
	printTopics(&out, "c1", []core.Topic{
		{Label: "Go", Count: 3},
		{Label: "Instructions & Preferences", Count: 1, Sticky: true},
	}, 7)

	s := out.String()
	assert.Contains(t, s, "C1")
	assert.Contains(t, s, "Go")
	assert.Contains(t, s, "(3)")
	assert.Contains(t, s, "Instructions & Preferences")
	assert.Contains(t, s, "7 messages")
}

func TestPrintTopics_Empty(t *testing.T) {
	var out bytes.Buffer
	printTopics(&out, "c1", nil, 0)
	assert.Contains(t, out.String(), "no topics extracted yet")
}

func TestPrintChats(t *testing.T) {
	var out bytes.Buffer
	printChats(&out, []string{"b", "a"})
	assert.Contains(t, out.String(), "  b\n  a\n")

	out.Reset()
	printChats(&out, nil)
	assert.Contains(t, out.String(), "no chats yet")
}
