package system

import (
	"github.com/boxchase/server/internal/core/event"
	"github.com/boxchase/server/internal/world"
	"go.uber.org/zap"
)

// SubscribeScoreLog logs session events. Deaths log at info; highscore
// rises log at debug, and at info each time a run crosses a multiple of
// milestone frames.
func SubscribeScoreLog(bus *event.Bus, ws *world.State, milestone uint32, log *zap.Logger) {
	event.Subscribe(bus, func(e event.PlayerDied) {
		log.Info("player caught",
			zap.String("player", ws.Roster.Name(e.Handle)),
			zap.Int("handle", e.Handle),
			zap.Uint32("frame", e.Frame),
			zap.Uint32("survived", e.Survived),
		)
	})
	event.Subscribe(bus, func(e event.HighscoreBeaten) {
		fields := []zap.Field{
			zap.String("player", ws.Roster.Name(e.Handle)),
			zap.Uint32("highscore", e.Highscore),
			zap.Uint32("frame", e.Frame),
		}
		if milestone > 0 && e.Highscore%milestone == 0 {
			log.Info("highscore milestone", fields...)
			return
		}
		log.Debug("highscore beaten", fields...)
	})
}
