package utilities

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"okurmen-backend/internal/config"

	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	infoLog      *log.Logger
	warnLog      *log.Logger
	errorLog     *log.Logger
	debugLog     *log.Logger
	debugEnabled bool
	logMutex     sync.Mutex
	rotators     []*lumberjack.Logger
	accessWriter io.Writer = os.Stdout
)

func init() {
	infoLog = log.New(os.Stdout, "INFO: ", log.Ldate|log.Ltime)
	warnLog = log.New(os.Stdout, "WARNING: ", log.Ldate|log.Ltime)
	errorLog = log.New(os.Stderr, "ERROR: ", log.Ldate|log.Ltime)
	debugLog = log.New(os.Stdout, "DEBUG: ", log.Ldate|log.Ltime)
}

// SetupLogging sends each level to the console and to its own rotated file
// under cfg.Dir.
func SetupLogging(cfg config.LoggingConfig) error {
	if err := os.MkdirAll(cfg.Dir, 0755); err != nil {
		return fmt.Errorf("create log directory: %w", err)
	}

	logMutex.Lock()
	defer logMutex.Unlock()

	closeRotatorsLocked()
	infoFile := openLogFile(cfg, "info.log")
	warnFile := openLogFile(cfg, "warn.log")
	errorFile := openLogFile(cfg, "error.log")

	infoWriter := io.MultiWriter(os.Stdout, infoFile)
	warnWriter := io.MultiWriter(os.Stdout, warnFile)
	errorWriter := io.MultiWriter(os.Stderr, errorFile)
	accessWriter = io.MultiWriter(os.Stdout, openLogFile(cfg, "access.log"))

	infoLog = log.New(infoWriter, "INFO: ", log.Ldate|log.Ltime)
	warnLog = log.New(warnWriter, "WARNING: ", log.Ldate|log.Ltime)
	errorLog = log.New(errorWriter, "ERROR: ", log.Ldate|log.Ltime)
	debugLog = log.New(infoWriter, "DEBUG: ", log.Ldate|log.Ltime)
	debugEnabled = cfg.Debug

	// Override Go's default log
	log.SetOutput(infoWriter)
	return nil
}

// AccessWriter is where request access lines go: stdout plus access.log
// once SetupLogging has run.
func AccessWriter() io.Writer {
	logMutex.Lock()
	defer logMutex.Unlock()
	return accessWriter
}

// CloseLogging flushes and closes the rotated log files.
func CloseLogging() {
	logMutex.Lock()
	defer logMutex.Unlock()
	closeRotatorsLocked()
}

func closeRotatorsLocked() {
	for _, r := range rotators {
		_ = r.Close()
	}
	rotators = nil
}

func openLogFile(cfg config.LoggingConfig, name string) io.Writer {
	r := &lumberjack.Logger{
		Filename:   filepath.Join(cfg.Dir, name),
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAgeDays,
		Compress:   true,
	}
	rotators = append(rotators, r)
	return r
}

func getCallerInfo() string {
	pc, _, _, ok := runtime.Caller(3)
	if !ok {
		return "unknown"
	}
	name := runtime.FuncForPC(pc).Name()
	if i := strings.LastIndex(name, "/"); i >= 0 {
		name = name[i+1:]
	}
	return name
}

func Log(level string, format string, v ...interface{}) {
	logMutex.Lock()
	defer logMutex.Unlock()

	message := fmt.Sprintf(format, v...)
	logEntry := fmt.Sprintf("[%s] %s", getCallerInfo(), message)

	switch level {
	case "INFO":
		infoLog.Println(logEntry)
	case "WARNING":
		warnLog.Println(logEntry)
	case "ERROR":
		errorLog.Println(logEntry)
	case "DEBUG":
		if debugEnabled {
			debugLog.Println(logEntry)
		}
	default:
		infoLog.Println(logEntry)
	}
}

func Info(format string, v ...interface{}) {
	Log("INFO", format, v...)
}

func Warn(format string, v ...interface{}) {
	Log("WARNING", format, v...)
}

func Error(format string, v ...interface{}) {
	Log("ERROR", format, v...)
}

func Debug(format string, v ...interface{}) {
	Log("DEBUG", format, v...)
}

// DebugEnabled reports whether Debug output is written.
func DebugEnabled() bool {
	logMutex.Lock()
	defer logMutex.Unlock()
	return debugEnabled
}
