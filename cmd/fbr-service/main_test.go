package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestWriteTimeoutCoversFullSubmission(t *testing.T) {
	fbrTimeout := 30 * time.Second

	assert.Greater(t, writeTimeout(fbrTimeout), 3*fbrTimeout)
}
