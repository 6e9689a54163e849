package service

import (
	"regexp"
	"sort"
	"strings"

	"agora/internal/models"
)

const (
	TrendingLimit      = 10
	minTrendingWordLen = 4
)

var wordPattern = regexp.MustCompile(`\w+`)

// ComputeTrending weighs every word longer than three characters by the
// like count of the post it appears in, plus one, per occurrence. The top
// limit keywords are returned by weight, ties broken alphabetically.
func ComputeTrending(posts []models.PostSnapshot, limit int) []models.Topic {
	weights := make(map[string]int64)
	for _, p := range posts {
		weight := p.LikesCount + 1
		for _, word := range wordPattern.FindAllString(strings.ToLower(p.Text), -1) {
			if len(word) >= minTrendingWordLen {
				weights[word] += weight
			}
		}
	}

	topics := make([]models.Topic, 0, len(weights))
	for k, w := range weights {
		topics = append(topics, models.Topic{Keyword: k, Weight: w})
	}
	sort.Slice(topics, func(i, j int) bool {
		if topics[i].Weight != topics[j].Weight {
			return topics[i].Weight > topics[j].Weight
		}
		return topics[i].Keyword < topics[j].Keyword
	})

	if limit > 0 && len(topics) > limit {
		topics = topics[:limit]
	}
	return topics
}
