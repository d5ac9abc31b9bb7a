//go:build !windows && !plan9

package logutil

import "log/syslog"

const syslogTag = "screenshot-ocr"

func openSyslog() (syslogWriter, error) {
	return syslog.New(syslog.LOG_INFO|syslog.LOG_USER, syslogTag)
}
