package reddit

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/bighogz/sentiment-features/internal/calendar"
	"github.com/bighogz/sentiment-features/internal/httpclient"
	"github.com/bighogz/sentiment-features/internal/models"
)

const source = "Reddit"

// PostOptions controls the per-community crawl.
type PostOptions struct {
	PostsPerDay int
	SearchLimit int
	Delay       time.Duration
}

// GetDailyPosts searches each community once and keeps, for every UTC day in
// [start, end], at most PostsPerDay of that community's posts created that day.
// Output is ordered by day, then by community in the given order, then newest
// first. A failed community is logged and listed in Coverage; ErrUnauthorized
// and cancellation abort.
func (c *Client) GetDailyPosts(ctx context.Context, keyword string, subreddits []string, start, end time.Time, opts PostOptions) ([]models.Post, models.Coverage, error) {
	cov := models.Coverage{Requested: len(subreddits)}
	days := calendar.Range(start, end)
	if len(days) == 0 {
		return nil, cov, nil
	}
	from, to := days[0], days[len(days)-1]
	pacer := httpclient.NewPacer("social", opts.Delay)

	// buckets[day][community index]
	buckets := make(map[time.Time][][]models.Post, len(days))
	for ci, sub := range subreddits {
		if err := pacer.Wait(ctx); err != nil {
			return nil, cov, err
		}
		subs, err := c.Search(ctx, sub, keyword, opts.SearchLimit)
		if err != nil {
			if errors.Is(err, ErrUnauthorized) {
				return nil, cov, err
			}
			if ctx.Err() != nil {
				return nil, cov, ctx.Err()
			}
			c.log.Warnw("subreddit search failed", "subreddit", sub, "keyword", keyword, "error", err)
			cov.FailedCommunities = append(cov.FailedCommunities, sub)
			continue
		}

		kept := 0
		for _, s := range subs {
			created := createdTime(s.CreatedUTC)
			d := calendar.Day(created)
			if d.Before(from) || d.After(to) {
				continue
			}
			if buckets[d] == nil {
				buckets[d] = make([][]models.Post, len(subreddits))
			}
			if opts.PostsPerDay > 0 && len(buckets[d][ci]) >= opts.PostsPerDay {
				continue
			}
			buckets[d][ci] = append(buckets[d][ci], toPost(s, sub, d, created))
			kept++
		}
		c.log.Infow("subreddit searched", "subreddit", sub, "keyword", keyword, "results", len(subs), "kept", kept)
	}

	var posts []models.Post
	for _, d := range days {
		for _, perSub := range buckets[d] {
			posts = append(posts, perSub...)
		}
	}
	return posts, cov, nil
}

func createdTime(ts float64) time.Time {
	sec, frac := math.Modf(ts)
	return time.Unix(int64(sec), int64(frac*1e9)).UTC()
}

func toPost(s Submission, sub string, day, created time.Time) models.Post {
	author := s.Author
	if author == "" || author == "[deleted]" {
		author = "N/A"
	}
	return models.Post{
		Date:        day,
		CreatedUTC:  created,
		ID:          s.ID,
		Author:      author,
		Title:       s.Title,
		Text:        s.SelfText,
		URL:         s.URL,
		Score:       s.Score,
		NumComments: s.NumComments,
		Subreddit:   sub,
		Source:      source,
	}
}
