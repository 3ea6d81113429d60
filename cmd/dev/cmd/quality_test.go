package cmd

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRunSteps_StopsAtFirstFailure(t *testing.T) {
	var ran []string
	fail := errors.New("exit status 1")
	record := func(name string, err error) step {
		return step{name, func() error {
			ran = append(ran, name)
			return err
		}}
	}
	err := runSteps(record("lint", nil), record("unit tests", fail), record("integration tests", nil))
	assert.ErrorIs(t, err, fail)
	assert.EqualError(t, err, "unit tests failed: exit status 1")
	assert.Equal(t, []string{"lint", "unit tests"}, ran)
}
