// internal/config/constants.go
package config

// アプリケーション情報
const (
	AppName    = "CPDTrack"
	AppVersion = "1.0.0"
)

// デフォルト設定値
const (
	DefaultServerPort          = ":8080"
	DefaultLogLevel            = "info"
	DefaultDeadlineWarningDays = 7
	DefaultJWTExpiryHours      = 24
)

// 日付のみを扱うフィールド (deadline, date_completed) の書式
const DateLayout = "2006-01-02"
