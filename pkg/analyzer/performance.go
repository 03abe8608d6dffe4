package analyzer

import (
	"context"
	"fmt"
	"sort"

	"github.com/jinford/deck-doctor/pkg/models"
)

// 成熟度の区分に使う間隔のしきい値（日数）
const (
	matureIntervalDays     = 21
	veryMatureIntervalDays = 90
)

// 苦戦カードの判定基準
const (
	strugglingEaseThreshold  = 1.5
	strugglingLapseThreshold = 2
)

// DeckPerformanceAnalyzer はレビュー統計からデッキの学習パフォーマンスを分析します
type DeckPerformanceAnalyzer struct {
	store CardStore
}

// NewDeckPerformanceAnalyzer は新しい DeckPerformanceAnalyzer を作成します
func NewDeckPerformanceAnalyzer(store CardStore) *DeckPerformanceAnalyzer {
	return &DeckPerformanceAnalyzer{store: store}
}

// Analyze はデッキのパフォーマンスを分析します
// minReviews 未満のレビュー数しか持たないカードは集計から除外します
// lookbackDays は互換性のために受け取りますが、カード単位の累積統計しか
// 参照できないため現状では集計に影響しません
func (a *DeckPerformanceAnalyzer) Analyze(ctx context.Context, deckName string, minReviews int, lookbackDays int) (*models.PerformanceReport, error) {
	_ = lookbackDays

	if err := CheckDeckExists(ctx, a.store, deckName); err != nil {
		return nil, err
	}

	cardIDs, err := a.store.FindCards(ctx, deckQuery(deckName))
	if err != nil {
		return nil, fmt.Errorf("failed to find cards: %w", err)
	}

	if len(cardIDs) == 0 {
		return emptyPerformanceReport(), nil
	}

	cardsInfo, err := a.store.CardsInfo(ctx, cardIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to get cards info: %w", err)
	}

	reviewed := make([]models.CardRecord, 0, len(cardsInfo))
	for _, c := range cardsInfo {
		if c.Reps >= minReviews {
			reviewed = append(reviewed, c)
		}
	}

	if len(reviewed) == 0 {
		return emptyPerformanceReport(), nil
	}

	totalReviews := 0
	for _, c := range reviewed {
		totalReviews += c.Reps
	}

	return &models.PerformanceReport{
		TotalReviews:     totalReviews,
		RetentionRate:    calculateRetentionRate(reviewed),
		EaseDistribution: easeDistribution(reviewed),
		LapseRate:        calculateLapseRate(reviewed),
		StrugglingCards:  findStrugglingCards(reviewed),
		MaturityBreakdown: map[string]int{
			"young":       countMaturity(reviewed, 0, matureIntervalDays),
			"mature":      countMaturity(reviewed, matureIntervalDays, veryMatureIntervalDays),
			"very_mature": countMaturity(reviewed, veryMatureIntervalDays, -1),
		},
	}, nil
}

// emptyPerformanceReport はレビュー実績のないデッキに対する規定のレポートを返します
func emptyPerformanceReport() *models.PerformanceReport {
	return &models.PerformanceReport{
		TotalReviews:     0,
		RetentionRate:    0.0,
		EaseDistribution: map[string]int{},
		LapseRate:        0.0,
		StrugglingCards:  []models.StrugglingCard{},
		MaturityBreakdown: map[string]int{
			"young":       0,
			"mature":      0,
			"very_mature": 0,
		},
	}
}

// calculateRetentionRate は総レビュー数に対する成功率を計算します
// 成功数は総レビュー数から失念数を引いた値として近似します
func calculateRetentionRate(cards []models.CardRecord) float64 {
	totalReps, totalLapses := 0, 0
	for _, c := range cards {
		totalReps += c.Reps
		totalLapses += c.Lapses
	}
	if totalReps == 0 {
		return 0.0
	}

	rate := float64(totalReps-totalLapses) / float64(totalReps)
	if rate < 0 {
		rate = 0
	}
	if rate > 1 {
		rate = 1
	}
	return rate
}

// easeDistribution はease係数の分布をバケット別に集計します
func easeDistribution(cards []models.CardRecord) map[string]int {
	buckets := map[string]int{
		"<1.5":    0,
		"1.5-2.0": 0,
		"2.0-2.5": 0,
		"2.5-3.0": 0,
		">3.0":    0,
	}
	for _, c := range cards {
		ease := c.EaseFactor()
		if ease == 0 {
			// ease未設定のカードはAnkiの初期値とみなす
			ease = 2.5
		}
		switch {
		case ease < 1.5:
			buckets["<1.5"]++
		case ease < 2.0:
			buckets["1.5-2.0"]++
		case ease < 2.5:
			buckets["2.0-2.5"]++
		case ease < 3.0:
			buckets["2.5-3.0"]++
		default:
			buckets[">3.0"]++
		}
	}
	return buckets
}

// calculateLapseRate は一度でも失念したことのあるカードの割合を返します
func calculateLapseRate(cards []models.CardRecord) float64 {
	lapsed := 0
	for _, c := range cards {
		if c.Lapses > 0 {
			lapsed++
		}
	}
	return float64(lapsed) / float64(len(cards))
}

// findStrugglingCards は学習が定着していないカードを抽出します
// ease係数の低い順、同値なら失念数の多い順に並べます
func findStrugglingCards(cards []models.CardRecord) []models.StrugglingCard {
	struggling := []models.StrugglingCard{}
	for _, c := range cards {
		ease := c.EaseFactor()
		if ease == 0 {
			ease = 2.5
		}
		if ease < strugglingEaseThreshold || c.Lapses > strugglingLapseThreshold {
			struggling = append(struggling, models.StrugglingCard{
				NoteID:       c.NoteID,
				Ease:         round2(ease),
				Lapses:       c.Lapses,
				IntervalDays: c.Interval,
			})
		}
	}

	sort.SliceStable(struggling, func(i, j int) bool {
		if struggling[i].Ease != struggling[j].Ease {
			return struggling[i].Ease < struggling[j].Ease
		}
		return struggling[i].Lapses > struggling[j].Lapses
	})

	return struggling
}

// countMaturity は間隔が [min, max) の範囲にあるカード数を数えます
// max に -1 を渡すと上限なしとして扱います
func countMaturity(cards []models.CardRecord, min, max int) int {
	count := 0
	for _, c := range cards {
		if c.Interval >= min && (max < 0 || c.Interval < max) {
			count++
		}
	}
	return count
}
