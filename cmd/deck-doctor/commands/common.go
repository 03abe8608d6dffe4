package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/jinford/deck-doctor/internal/infra/ankiconnect"
	"github.com/jinford/deck-doctor/internal/platform/logger"
	"github.com/jinford/deck-doctor/pkg/analyzer"
	"github.com/jinford/deck-doctor/pkg/config"
	"github.com/jinford/deck-doctor/pkg/db"
	"github.com/jinford/deck-doctor/pkg/formatting"
	"github.com/jinford/deck-doctor/pkg/repository"
	"github.com/jinford/deck-doctor/pkg/validator"
)

// AppContext はコマンド実行に必要な共通コンテキストを保持する
type AppContext struct {
	Config      *config.Config
	Anki        *ankiconnect.Client
	Validator   *validator.CardValidator
	Highlighter *formatting.Highlighter

	// Database は履歴保存が必要なときに遅延接続される
	database *db.DB
}

// NewAppContext は設定を読み込み、AnkiConnectクライアントを作成する
// データベースにはこの時点では接続しない
func NewAppContext(ctx context.Context, envFile string) (*AppContext, error) {
	cfg, err := config.Load(envFile)
	if err != nil {
		return nil, fmt.Errorf("設定の読み込みに失敗: %w", err)
	}

	logCfg := logger.DefaultConfig()
	logCfg.Level = logger.ParseLevel(os.Getenv("LOG_LEVEL"))
	logger.New(logCfg)

	anki := ankiconnect.NewClient(cfg.AnkiConnect.URL, cfg.AnkiConnect.Version, cfg.AnkiConnect.Timeout)

	highlighter := formatting.NewHighlighter(formatting.HighlighterConfig{
		Style:           cfg.Highlight.Style,
		LineNumbers:     cfg.Highlight.LineNumbers,
		CenterFragments: cfg.Highlight.CenterFragments,
		FontSize:        cfg.Highlight.FontSize,
	})

	return &AppContext{
		Config:      cfg,
		Anki:        anki,
		Validator:   validator.New(cfg.Defaults.Strictness),
		Highlighter: highlighter,
	}, nil
}

// Close はAppContextが保持するリソースをクリーンアップする
func (ac *AppContext) Close() {
	if ac.database != nil {
		ac.database.Close()
	}
}

// Database はデータベースに接続して返す
// 履歴・記憶系のコマンドのように接続が必須の場合に使う
func (ac *AppContext) Database(ctx context.Context) (*db.DB, error) {
	if ac.database != nil {
		return ac.database, nil
	}

	database, err := db.New(ctx, ac.Config.Database)
	if err != nil {
		return nil, fmt.Errorf("データベースへの接続に失敗: %w", err)
	}

	if err := repository.InitSchema(ctx, database.Pool); err != nil {
		database.Close()
		return nil, fmt.Errorf("スキーマの初期化に失敗: %w", err)
	}

	ac.database = database
	return ac.database, nil
}

// HistoryRW は履歴リポジトリを返す
// 接続に失敗した場合はnilを返して処理を続行させる（履歴保存はベストエフォート）
func (ac *AppContext) HistoryRW(ctx context.Context) *repository.HistoryRepositoryRW {
	database, err := ac.Database(ctx)
	if err != nil {
		slog.Warn("履歴データベースに接続できないため記録をスキップ", "error", err)
		return nil
	}
	return repository.NewHistoryRepositoryRW(database.Pool)
}

// MemoryRW は記憶リポジトリを返す（接続必須）
func (ac *AppContext) MemoryRW(ctx context.Context) (*repository.MemoryRepositoryRW, error) {
	database, err := ac.Database(ctx)
	if err != nil {
		return nil, err
	}
	return repository.NewMemoryRepositoryRW(database.Pool), nil
}

// explainAnkiError はAnkiConnect系のエラーをユーザー向けメッセージに変換する
func explainAnkiError(err error) error {
	if errors.Is(err, ankiconnect.ErrConnectionFailed) {
		return fmt.Errorf("Ankiに接続できません。AnkiConnectアドオン入りのAnkiが起動しているか確認してください: %w", err)
	}

	var notFound *analyzer.DeckNotFoundError
	if errors.As(err, &notFound) {
		if len(notFound.Suggestions) > 0 {
			return fmt.Errorf("デッキ %q が見つかりません。候補: %s", notFound.Deck, strings.Join(notFound.Suggestions, ", "))
		}
		return fmt.Errorf("デッキ %q が見つかりません。deck-doctor deck list で確認してください", notFound.Deck)
	}

	return err
}

// splitTags はカンマ区切りのタグ指定を分割する
func splitTags(s string) []string {
	if s == "" {
		return nil
	}
	var tags []string
	for _, t := range strings.Split(s, ",") {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}

// truncateString は表示用に文字列を丸める
func truncateString(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen-3]) + "..."
}
