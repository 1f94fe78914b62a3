// Package log 는 zap 기반의 전역 로거를 제공한다.
package log

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Init 전에는 nop logger 가 기본값이다 (테스트 등에서 안전).
var sugar = zap.NewNop().Sugar()

// Init 은 설정값에 따라 zap logger 를 초기화한다.
func Init(level, format, outputPath string) {
	var err error
	var logger *zap.Logger
	var zapConfig zap.Config

	// 로그 레벨 파싱, 실패 시 info 로 폴백
	logLevel := zap.NewAtomicLevel()
	if err := logLevel.UnmarshalText([]byte(level)); err != nil {
		logLevel.SetLevel(zap.InfoLevel)
	}

	encoding := "json"
	if format == "console" {
		encoding = "console"
	}

	// console 포맷은 개발용 설정, 그 외에는 프로덕션 설정
	if format == "console" {
		zapConfig = zap.NewDevelopmentConfig()
		zapConfig.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		zapConfig = zap.NewProductionConfig()
	}

	zapConfig.Level = logLevel
	zapConfig.Encoding = encoding
	zapConfig.OutputPaths = []string{"stdout"}
	if outputPath != "" {
		// 파일 출력 경로가 지정되면 stdout 과 파일 양쪽에 기록
		_ = os.MkdirAll(outputPath, os.ModePerm)
		zapConfig.OutputPaths = append(zapConfig.OutputPaths, outputPath+"/app.log")
	}

	logger, err = zapConfig.Build()
	if err != nil {
		panic(err)
	}

	sugar = logger.Sugar()
}

// Debugf 는 debug 레벨 로그를 포맷 문자열로 기록한다.
func Debugf(template string, args ...interface{}) {
	sugar.Debugf(template, args...)
}

// Info 는 info 레벨 로그를 기록한다.
func Info(msg string) {
	sugar.Info(msg)
}

// Infof 는 info 레벨 로그를 포맷 문자열로 기록한다.
func Infof(template string, args ...interface{}) {
	sugar.Infof(template, args...)
}

// Infow 는 key-value 쌍으로 구조화된 info 로그를 기록한다.
func Infow(msg string, keysAndValues ...interface{}) {
	sugar.Infow(msg, keysAndValues...)
}

// Warnf 는 warn 레벨 로그를 포맷 문자열로 기록한다.
func Warnf(template string, args ...interface{}) {
	sugar.Warnf(template, args...)
}

// Error 는 error 레벨 로그를 error 와 함께 기록한다.
func Error(msg string, err error) {
	sugar.Errorw(msg, "error", err)
}

func Errorf(template string, args ...interface{}) {
	sugar.Errorf(template, args...)
}

// Fatal 은 fatal 레벨 로그를 기록한 뒤 프로세스를 종료한다.
func Fatal(msg string, err error) {
	sugar.Fatalw(msg, "error", err)
}

func Fatalf(template string, args ...interface{}) {
	sugar.Fatalf(template, args...)
}

// Sync 는 버퍼에 남은 로그를 flush 한다. 종료 직전에 호출한다.
func Sync() {
	_ = sugar.Sync()
}
