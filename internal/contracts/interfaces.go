package contracts

import "context"

// MarketDataSource turns a filter expression into deduplicated candidates
// ⭐ SSOT: 시장 데이터 조회 인터페이스
type MarketDataSource interface {
	FetchCandidates(ctx context.Context, filters []Filter, limit int, market Market) ([]CandidateRecord, error)
}

// SentimentEnricher merges best-effort sentiment into candidates without mutating them
// ⭐ SSOT: 감성 데이터 보강 인터페이스
type SentimentEnricher interface {
	Enrich(ctx context.Context, candidates []CandidateRecord, market Market) []CandidateRecord
}

// EventPublisher announces changes to live subscribers
type EventPublisher interface {
	Publish(event string, payload interface{})
}
