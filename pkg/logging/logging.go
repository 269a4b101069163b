package logging

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

var (
	clientID     string
	clientIDOnce sync.Once

	debugEnabled atomic.Bool
	jsonFormat   atomic.Bool

	// Async logging channel and worker
	logChan   chan string
	logWorker sync.Once
	logWg     sync.WaitGroup
	logMu     sync.Mutex
	logger    = log.New(os.Stderr, "", log.LstdFlags)
)

// initLogWorker starts the async log worker goroutine
func initLogWorker() {
	logMu.Lock()
	defer logMu.Unlock()

	logWorker.Do(func() {
		// Buffer size: 1000 messages
		logChan = make(chan string, 1000)

		logWg.Add(1)
		go func(ch <-chan string) {
			defer logWg.Done()
			for msg := range ch {
				logger.Print(msg)
			}
		}(logChan)
	})
}

// SetOutput redirects log output. Pending messages are flushed first.
func SetOutput(w io.Writer) {
	Flush()
	logger.SetOutput(w)
}

// SetFlags sets the standard log flags on the underlying logger.
func SetFlags(flags int) {
	logger.SetFlags(flags)
}

// SetLevel enables Debugf output when level is "debug".
func SetLevel(level string) {
	debugEnabled.Store(strings.EqualFold(strings.TrimSpace(level), "debug"))
}

// SetFormat selects "json" (one object per line) or "text" output.
func SetFormat(format string) {
	if strings.EqualFold(strings.TrimSpace(format), "json") {
		jsonFormat.Store(true)
		// timestamp is carried in the object
		logger.SetFlags(0)
		return
	}
	jsonFormat.Store(false)
	logger.SetFlags(log.LstdFlags)
}

type jsonLine struct {
	Time   string `json:"time"`
	Level  string `json:"level"`
	Client string `json:"client"`
	Msg    string `json:"msg"`
}

func render(level, msg string) string {
	if jsonFormat.Load() {
		out, err := json.Marshal(jsonLine{
			Time:   time.Now().UTC().Format(time.RFC3339Nano),
			Level:  level,
			Client: GetClientID(),
			Msg:    msg,
		})
		if err == nil {
			return string(out)
		}
	}
	if level == "debug" {
		msg = "[debug] " + msg
	}
	return fmt.Sprintf("[client=%s] %s", GetClientID(), msg)
}

// SetClientID fixes the id used in the log prefix. It has no effect once the
// id has been resolved.
func SetClientID(id string) {
	if id == "" {
		return
	}
	clientIDOnce.Do(func() {
		clientID = id
	})
}

// GetClientID returns the identifier of this client instance
func GetClientID() string {
	clientIDOnce.Do(func() {
		// UC_CLIENT_ID first (allows fixed id), then POD_NAME, then HOSTNAME
		clientID = os.Getenv("UC_CLIENT_ID")
		if clientID == "" {
			clientID = os.Getenv("POD_NAME")
		}
		if clientID == "" {
			clientID = os.Getenv("HOSTNAME")
		}
		if clientID == "" {
			hostname, _ := os.Hostname()
			if hostname != "" {
				// Use last 8 chars of hostname as fallback
				if len(hostname) > 8 {
					clientID = hostname[len(hostname)-8:]
				} else {
					clientID = hostname
				}
			} else {
				clientID = "unknown"
			}
		}
	})
	return clientID
}

func emit(level, msg string) {
	initLogWorker()
	logMsg := render(level, msg)

	logMu.Lock()
	defer logMu.Unlock()
	// Non-blocking send: if channel is full, log synchronously
	select {
	case logChan <- logMsg:
	default:
		logger.Print(logMsg)
	}
}

// Logf logs a formatted message with client ID prefix (async, non-blocking)
func Logf(format string, v ...interface{}) {
	emit("info", fmt.Sprintf(format, v...))
}

// Log logs a message with client ID prefix (async, non-blocking)
func Log(v ...interface{}) {
	emit("info", fmt.Sprint(v...))
}

// Debugf logs only when the level is debug
func Debugf(format string, v ...interface{}) {
	if !debugEnabled.Load() {
		return
	}
	emit("debug", fmt.Sprintf(format, v...))
}

// Fatalf logs a fatal error with client ID prefix and exits (synchronous)
func Fatalf(format string, v ...interface{}) {
	Flush()
	logger.Fatal(render("fatal", fmt.Sprintf(format, v...)))
}

// Flush waits for all pending log messages to be written
func Flush() {
	logMu.Lock()
	defer logMu.Unlock()

	if logChan != nil {
		close(logChan)
		logWg.Wait()
		logChan = nil
		logWorker = sync.Once{}
	}
}
