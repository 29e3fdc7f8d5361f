package logger

import (
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	// Log는 프로세스 전역 로거입니다
	Log = logrus.New()
	mu  sync.Mutex
)

// Config는 로그 출력 설정을 정의합니다
type Config struct {
	Level      string // debug, info, warn, error
	OutputFile string // 비어 있으면 콘솔에만 출력
	MaxSize    int    // 파일 최대 크기 (MB)
	MaxBackups int    // 보관할 이전 파일 개수
	MaxAge     int    // 보관 일수
	Compress   bool
}

// Init은 설정에 따라 전역 로거를 초기화합니다
func Init(cfg Config) error {
	mu.Lock()
	defer mu.Unlock()

	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	Log.SetLevel(level)
	Log.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})

	if cfg.OutputFile == "" {
		Log.SetOutput(os.Stdout)
		return nil
	}

	if dir := filepath.Dir(cfg.OutputFile); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}

	rotator := &lumberjack.Logger{
		Filename:   cfg.OutputFile,
		MaxSize:    withDefault(cfg.MaxSize, 100),
		MaxBackups: withDefault(cfg.MaxBackups, 3),
		MaxAge:     withDefault(cfg.MaxAge, 7),
		Compress:   cfg.Compress,
	}
	Log.SetOutput(io.MultiWriter(os.Stdout, rotator))
	return nil
}

// Component는 component 필드가 붙은 엔트리를 반환합니다
func Component(name string) *logrus.Entry {
	return Log.WithField("component", name)
}

func withDefault(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}
