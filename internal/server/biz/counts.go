package biz

import (
	"context"
	"fmt"

	"github.com/DavidSemke/TechstackApi/internal/models"
)

type reactionTally struct {
	TargetID uint
	Type     models.ReactionType
	Count    int64
}

// reactionCounts aggregates like and dislike totals for a set of targets.
// column is the reaction foreign key to group by ("post_id" or
// "comment_id").
func (a *AbstractService) reactionCounts(ctx context.Context, column string, ids []uint) (likes, dislikes map[uint]int64, err error) {
	likes = make(map[uint]int64, len(ids))
	dislikes = make(map[uint]int64, len(ids))

	if len(ids) == 0 {
		return likes, dislikes, nil
	}

	var tallies []reactionTally

	err = a.dbFromContext(ctx).
		Model(&models.Reaction{}).
		Select(column+" AS target_id, type, COUNT(*) AS count").
		Where(column+" IN ?", ids).
		Group(column + ", type").
		Scan(&tallies).Error
	if err != nil {
		return nil, nil, fmt.Errorf("failed to count reactions: %w", err)
	}

	for _, t := range tallies {
		switch t.Type {
		case models.ReactionLike:
			likes[t.TargetID] = t.Count
		case models.ReactionDislike:
			dislikes[t.TargetID] = t.Count
		}
	}

	return likes, dislikes, nil
}
