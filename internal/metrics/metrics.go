// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "agora"

var (
	// LikeToggles counts toggle outcomes by target type and result ("liked"/"unliked")
	LikeToggles = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "like_toggles_total",
		Help:      "Like toggles by target type and resulting state.",
	}, []string{"target_type", "result"})

	// CommentLikes counts increments on the raw comment like counter
	CommentLikes = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "comment_counter_likes_total",
		Help:      "Increments of the per-comment like counter.",
	})

	// FeedEnrichmentFailures counts posts served without their top comment
	// because the lookup failed. stage is "batch" or "post".
	FeedEnrichmentFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "feed_enrichment_failures_total",
		Help:      "Top-comment lookups that failed while assembling a feed.",
	}, []string{"stage"})

	// FeedPostsServed observes how many posts each feed page returned
	FeedPostsServed = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "feed_page_posts",
		Help:      "Number of posts returned per feed page.",
		Buckets:   []float64{0, 1, 5, 10, 15, 25, 50},
	})

	// PostMutations counts successful post lifecycle operations by kind
	PostMutations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "post_mutations_total",
		Help:      "Post lifecycle operations by kind.",
	}, []string{"op"})
)

// Handler returns the HTTP handler serving the default registry
func Handler() http.Handler {
	return promhttp.Handler()
}
