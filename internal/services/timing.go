package services

import (
	"time"

	log "github.com/sirupsen/logrus"
)

// slowCall is the duration above which a tracked call is logged at info level
const slowCall = 2 * time.Second

// TrackTime logs how long funcName ran. Use as: defer TrackTime("Name", time.Now())
func TrackTime(funcName string, start time.Time) {
	elapsed := time.Since(start)
	entry := log.WithField("elapsed_ms", elapsed.Milliseconds())
	if elapsed > slowCall {
		entry.Infof("%s was slow", funcName)
		return
	}
	entry.Debugf("%s took %d ms", funcName, elapsed.Milliseconds())
}
