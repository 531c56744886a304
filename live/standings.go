package live

import (
	"context"
	"log/slog"
	"time"

	"github.com/fencelab/fencing-system/models"
	"github.com/fencelab/fencing-system/repositories"
)

// Сколько верхних строк таблицы уходит в рассылку.
const standingsBroadcastLimit = 50

const standingsFetchTimeout = 5 * time.Second

// StandingsBroadcaster пересылает обновлённую таблицу категории в её
// комнату. Реализует services.StandingsNotifier.
type StandingsBroadcaster struct {
	hub         *Hub
	rankingRepo repositories.RankingRepository
	logger      *slog.Logger
}

func NewStandingsBroadcaster(hub *Hub, rankingRepo repositories.RankingRepository, logger *slog.Logger) *StandingsBroadcaster {
	return &StandingsBroadcaster{
		hub:         hub,
		rankingRepo: rankingRepo,
		logger:      logger,
	}
}

// NotifyBracket асинхронно читает свежую таблицу категории и рассылает
// её подписчикам. Ошибка чтения логируется и не влияет на вызвавшую
// операцию: рассылка — best effort.
func (b *StandingsBroadcaster) NotifyBracket(bracket models.Bracket) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), standingsFetchTimeout)
		defer cancel()

		standings, err := b.rankingRepo.List(ctx, repositories.ListRankingsFilter{
			Bracket: &bracket,
			Limit:   standingsBroadcastLimit,
		})
		if err != nil {
			b.logger.Error("failed to load standings for broadcast",
				slog.String("bracket", string(bracket)),
				slog.Any("error", err),
			)
			return
		}

		room := string(bracket)
		b.hub.BroadcastToRoom(room, Message{
			Type:    "STANDINGS_UPDATED",
			Payload: standings,
			Room:    room,
		})
	}()
}
