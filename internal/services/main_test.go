package services

import (
	"io"
	"os"
	"testing"

	"stackup/pkg/logging"
)

func TestMain(m *testing.M) {
	logging.Init(logging.LevelError, io.Discard, true)
	os.Exit(m.Run())
}
