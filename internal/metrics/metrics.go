package metrics

import "github.com/prometheus/client_golang/prometheus"

type Metrics struct {
	ChatTurns        *prometheus.CounterVec
	CommunityPosts   prometheus.Counter
	Listings         prometheus.Counter
	PrivateMessages  prometheus.Counter
	DatingProfiles   prometheus.Counter
	ContactDenied    prometheus.Counter
	LLMRequests      *prometheus.CounterVec
	LLMRequestLength prometheus.Histogram
}

func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		ChatTurns: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "happiness_chat_turns_total",
				Help: "Total number of persisted chat turns",
			},
			[]string{"kind"}, // opener or reply
		),
		CommunityPosts: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "happiness_community_posts_total",
			Help: "Total number of community posts",
		}),
		Listings: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "happiness_marketplace_listings_total",
			Help: "Total number of marketplace listings",
		}),
		PrivateMessages: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "happiness_private_messages_total",
			Help: "Total number of private messages sent",
		}),
		DatingProfiles: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "happiness_dating_profiles_saved_total",
			Help: "Total number of dating profile saves",
		}),
		ContactDenied: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "happiness_contact_denied_total",
			Help: "Contact attempts blocked by the access gate",
		}),
		LLMRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "happiness_llm_requests_total",
				Help: "Model calls by outcome",
			},
			[]string{"outcome"},
		),
		LLMRequestLength: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "happiness_llm_request_duration_seconds",
			Help:    "Latency of model calls including retries",
			Buckets: prometheus.ExponentialBuckets(0.25, 2, 8),
		}),
	}

	reg.MustRegister(
		m.ChatTurns,
		m.CommunityPosts,
		m.Listings,
		m.PrivateMessages,
		m.DatingProfiles,
		m.ContactDenied,
		m.LLMRequests,
		m.LLMRequestLength,
	)

	return m
}

// NewNop returns metrics registered on a throwaway registry.
func NewNop() *Metrics {
	return New(prometheus.NewRegistry())
}
