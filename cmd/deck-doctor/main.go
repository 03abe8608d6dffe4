package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/jinford/deck-doctor/cmd/deck-doctor/commands"
	"github.com/urfave/cli/v3"
)

// envFlag は全コマンド共通の環境変数ファイル指定フラグ
func envFlag() cli.Flag {
	return &cli.StringFlag{
		Name:  "env",
		Usage: "環境変数ファイルパス",
		Value: ".env",
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := &cli.Command{
		Name:  "deck-doctor",
		Usage: "Ankiフラッシュカードデッキの品質診断・成績分析・改善提案ツール",
		Commands: []*cli.Command{
			{
				Name:  "deck",
				Usage: "デッキ管理コマンド",
				Commands: []*cli.Command{
					{
						Name:   "list",
						Usage:  "デッキ一覧を表示",
						Flags:  []cli.Flag{envFlag()},
						Action: commands.DeckListAction,
					},
					{
						Name:  "create",
						Usage: "デッキを作成（::区切りで階層を指定可能）",
						Flags: []cli.Flag{
							envFlag(),
							&cli.StringFlag{
								Name:     "name",
								Usage:    "デッキ名 (例: Biology::Cells)",
								Required: true,
							},
						},
						Action: commands.DeckCreateAction,
					},
					{
						Name:  "stats",
						Usage: "デッキの学習状況の統計を表示",
						Flags: []cli.Flag{
							envFlag(),
							&cli.StringFlag{
								Name:     "deck",
								Usage:    "デッキ名",
								Required: true,
							},
						},
						Action: commands.DeckStatsAction,
					},
					{
						Name:  "preview",
						Usage: "既存カードの形式・タグ付けの傾向を表示",
						Flags: []cli.Flag{
							envFlag(),
							&cli.StringFlag{
								Name:     "deck",
								Usage:    "デッキ名",
								Required: true,
							},
							&cli.IntFlag{
								Name:  "sample-size",
								Usage: "サンプル数（最大25）",
								Value: 10,
							},
						},
						Action: commands.DeckPreviewAction,
					},
				},
			},
			{
				Name:  "analyze",
				Usage: "デッキ分析コマンド",
				Commands: []*cli.Command{
					{
						Name:  "quality",
						Usage: "カード品質を分析してスコアとレポートを表示",
						Flags: []cli.Flag{
							envFlag(),
							&cli.StringFlag{
								Name:     "deck",
								Usage:    "デッキ名",
								Required: true,
							},
							&cli.IntFlag{
								Name:  "sample-size",
								Usage: "サンプリングするカード数（0で全件）",
							},
						},
						Action: commands.AnalyzeQualityAction,
					},
					{
						Name:  "performance",
						Usage: "学習成績（定着率・ease分布・苦手カード）を分析",
						Flags: []cli.Flag{
							envFlag(),
							&cli.StringFlag{
								Name:     "deck",
								Usage:    "デッキ名",
								Required: true,
							},
							&cli.IntFlag{
								Name:  "min-reviews",
								Usage: "集計対象とする最低復習回数",
								Value: 5,
							},
							&cli.IntFlag{
								Name:  "lookback-days",
								Usage: "集計対象期間（日数）",
								Value: 30,
							},
						},
						Action: commands.AnalyzePerformanceAction,
					},
				},
			},
			{
				Name:  "recommend",
				Usage: "品質と成績の両分析から優先度付きの改善提案を生成",
				Flags: []cli.Flag{
					envFlag(),
					&cli.StringFlag{
						Name:     "deck",
						Usage:    "デッキ名",
						Required: true,
					},
					&cli.IntFlag{
						Name:  "max",
						Usage: "提案の最大件数",
						Value: 10,
					},
					&cli.IntFlag{
						Name:  "sample-size",
						Usage: "品質分析でサンプリングするカード数（0で全件）",
					},
					&cli.IntFlag{
						Name:  "min-reviews",
						Usage: "成績分析で集計対象とする最低復習回数",
						Value: 5,
					},
				},
				Action: commands.RecommendAction,
			},
			{
				Name:  "card",
				Usage: "カード管理コマンド",
				Commands: []*cli.Command{
					{
						Name:  "create-basic",
						Usage: "基本カード（表・裏）を作成",
						Flags: []cli.Flag{
							envFlag(),
							&cli.StringFlag{
								Name:     "front",
								Usage:    "表面の質問文（HTML可）",
								Required: true,
							},
							&cli.StringFlag{
								Name:     "back",
								Usage:    "裏面の解答（HTML可）",
								Required: true,
							},
							&cli.StringFlag{
								Name:  "deck",
								Usage: "デッキ名（省略時はデフォルトデッキ）",
							},
							&cli.StringFlag{
								Name:  "tags",
								Usage: "タグ（カンマ区切り）",
							},
							&cli.BoolFlag{
								Name:  "no-validate",
								Usage: "品質バリデーションをスキップ",
							},
						},
						Action: commands.CardCreateBasicAction,
					},
					{
						Name:  "create-cloze",
						Usage: "穴埋めカードを作成",
						Flags: []cli.Flag{
							envFlag(),
							&cli.StringFlag{
								Name:     "text",
								Usage:    "穴埋めテキスト（{{c1::答え}} 形式）",
								Required: true,
							},
							&cli.StringFlag{
								Name:  "extra",
								Usage: "補足コンテキスト",
							},
							&cli.StringFlag{
								Name:  "deck",
								Usage: "デッキ名（省略時はデフォルトデッキ）",
							},
							&cli.StringFlag{
								Name:  "tags",
								Usage: "タグ（カンマ区切り）",
							},
							&cli.BoolFlag{
								Name:  "no-validate",
								Usage: "品質バリデーションをスキップ",
							},
						},
						Action: commands.CardCreateClozeAction,
					},
					{
						Name:  "create-type-in",
						Usage: "タイプ入力カードを作成",
						Flags: []cli.Flag{
							envFlag(),
							&cli.StringFlag{
								Name:     "front",
								Usage:    "表面の質問文",
								Required: true,
							},
							&cli.StringFlag{
								Name:     "back",
								Usage:    "入力させる解答（短く正確に）",
								Required: true,
							},
							&cli.StringFlag{
								Name:  "deck",
								Usage: "デッキ名（省略時はデフォルトデッキ）",
							},
							&cli.StringFlag{
								Name:  "tags",
								Usage: "タグ（カンマ区切り）",
							},
							&cli.BoolFlag{
								Name:  "no-validate",
								Usage: "品質バリデーションをスキップ",
							},
						},
						Action: commands.CardCreateTypeInAction,
					},
					{
						Name:  "inspect",
						Usage: "ノートの全フィールドとメタデータを表示",
						Flags: []cli.Flag{
							envFlag(),
							&cli.IntFlag{
								Name:     "note-id",
								Usage:    "AnkiノートID",
								Required: true,
							},
						},
						Action: commands.CardInspectAction,
					},
					{
						Name:  "search",
						Usage: "デッキ内のカードを検索して一覧表示",
						Flags: []cli.Flag{
							envFlag(),
							&cli.StringFlag{
								Name:     "deck",
								Usage:    "デッキ名",
								Required: true,
							},
							&cli.StringFlag{
								Name:  "query",
								Usage: "Anki検索構文の追加条件 (例: is:new)",
							},
							&cli.StringFlag{
								Name:  "tags",
								Usage: "タグで絞り込み（カンマ区切り）",
							},
							&cli.IntFlag{
								Name:  "limit",
								Usage: "表示する最大件数（最大100）",
								Value: 20,
							},
						},
						Action: commands.CardSearchAction,
					},
				},
			},
			{
				Name:  "tag",
				Usage: "タグ管理コマンド",
				Commands: []*cli.Command{
					{
						Name:  "update",
						Usage: "ノートのタグを追加・削除",
						Flags: []cli.Flag{
							envFlag(),
							&cli.IntFlag{
								Name:     "note-id",
								Usage:    "AnkiノートID",
								Required: true,
							},
							&cli.StringFlag{
								Name:  "add",
								Usage: "追加するタグ（カンマ区切り）",
							},
							&cli.StringFlag{
								Name:  "remove",
								Usage: "削除するタグ（カンマ区切り）",
							},
						},
						Action: commands.TagUpdateAction,
					},
				},
			},
			{
				Name:  "history",
				Usage: "生成・分析履歴コマンド",
				Commands: []*cli.Command{
					{
						Name:  "generations",
						Usage: "カード生成セッションの履歴を表示",
						Flags: []cli.Flag{
							envFlag(),
							&cli.StringFlag{
								Name:  "source-type",
								Usage: "ソース種別でフィルタ (pdf/epub/web/text/manual)",
							},
							&cli.IntFlag{
								Name:  "limit",
								Usage: "表示する最大件数",
								Value: 50,
							},
						},
						Action: commands.HistoryGenerationsAction,
					},
					{
						Name:  "cards",
						Usage: "生成済みカードの履歴を表示",
						Flags: []cli.Flag{
							envFlag(),
							&cli.StringFlag{
								Name:  "source",
								Usage: "ソースパスでフィルタ",
							},
							&cli.IntFlag{
								Name:  "limit",
								Usage: "表示する最大件数",
								Value: 20,
							},
						},
						Action: commands.HistoryCardsAction,
					},
					{
						Name:  "analyses",
						Usage: "デッキ分析の実行履歴を表示",
						Flags: []cli.Flag{
							envFlag(),
							&cli.StringFlag{
								Name:  "deck",
								Usage: "デッキ名でフィルタ",
							},
							&cli.IntFlag{
								Name:  "limit",
								Usage: "表示する最大件数",
								Value: 10,
							},
						},
						Action: commands.HistoryAnalysesAction,
					},
					{
						Name:   "stats",
						Usage:  "生成済みカードのバリデーション統計を表示",
						Flags:  []cli.Flag{envFlag()},
						Action: commands.HistoryStatsAction,
					},
				},
			},
			{
				Name:  "memory",
				Usage: "カード設計の記憶（根拠・フィードバック・概念・セッション）コマンド",
				Commands: []*cli.Command{
					{
						Name:  "rationale",
						Usage: "カード設計判断の根拠を記録",
						Flags: []cli.Flag{
							envFlag(),
							&cli.IntFlag{
								Name:     "note-id",
								Usage:    "AnkiノートID",
								Required: true,
							},
							&cli.StringFlag{
								Name:     "reasoning",
								Usage:    "このカードタイプを選んだ理由",
								Required: true,
							},
							&cli.StringFlag{
								Name:  "wording",
								Usage: "言い回しに関するメモ",
							},
							&cli.StringFlag{
								Name:  "alternatives",
								Usage: "検討した代替案（カンマ区切り）",
							},
						},
						Action: commands.MemoryRationaleAction,
					},
					{
						Name:  "feedback",
						Usage: "カードへのフィードバックを記録",
						Flags: []cli.Flag{
							envFlag(),
							&cli.IntFlag{
								Name:     "note-id",
								Usage:    "AnkiノートID",
								Required: true,
							},
							&cli.StringFlag{
								Name:     "type",
								Usage:    "フィードバック種別 (confusing/too_hard/too_easy 等)",
								Required: true,
							},
							&cli.StringFlag{
								Name:  "comment",
								Usage: "ユーザーのコメント",
							},
							&cli.StringFlag{
								Name:  "reflection",
								Usage: "内省メモ",
							},
							&cli.StringFlag{
								Name:  "action",
								Usage: "実施した対応",
							},
						},
						Action: commands.MemoryFeedbackAction,
					},
					{
						Name:  "link",
						Usage: "カードを学習概念に紐付け（概念は自動作成）",
						Flags: []cli.Flag{
							envFlag(),
							&cli.IntFlag{
								Name:     "note-id",
								Usage:    "AnkiノートID",
								Required: true,
							},
							&cli.StringFlag{
								Name:     "concept",
								Usage:    "概念名",
								Required: true,
							},
							&cli.StringFlag{
								Name:     "deck",
								Usage:    "デッキ名",
								Required: true,
							},
							&cli.StringFlag{
								Name:  "relationship",
								Usage: "関係の種類 (defines/examples/contrasts 等)",
							},
							&cli.StringFlag{
								Name:  "description",
								Usage: "概念の説明（初回作成時に保存）",
							},
						},
						Action: commands.MemoryLinkAction,
					},
					{
						Name:  "coverage",
						Usage: "デッキの概念カバレッジを表示",
						Flags: []cli.Flag{
							envFlag(),
							&cli.StringFlag{
								Name:     "deck",
								Usage:    "デッキ名",
								Required: true,
							},
						},
						Action: commands.MemoryCoverageAction,
					},
					{
						Name:  "session",
						Usage: "セッションコンテキスト管理",
						Commands: []*cli.Command{
							{
								Name:  "save",
								Usage: "セッションコンテキストを保存",
								Flags: []cli.Flag{
									envFlag(),
									&cli.StringFlag{
										Name:     "deck",
										Usage:    "デッキ名",
										Required: true,
									},
									&cli.StringFlag{
										Name:  "source-material",
										Usage: "使用した教材 (例: PDFファイル名、章)",
									},
									&cli.StringFlag{
										Name:  "goals",
										Usage: "学習目標",
									},
									&cli.StringFlag{
										Name:  "strategy",
										Usage: "カバレッジ戦略",
									},
									&cli.StringFlag{
										Name:  "observations",
										Usage: "セッション中に気づいたこと",
									},
								},
								Action: commands.MemorySessionSaveAction,
							},
							{
								Name:  "show",
								Usage: "直近のセッションコンテキストを表示",
								Flags: []cli.Flag{
									envFlag(),
									&cli.StringFlag{
										Name:     "deck",
										Usage:    "デッキ名",
										Required: true,
									},
									&cli.IntFlag{
										Name:  "limit",
										Usage: "表示する最大件数",
										Value: 3,
									},
								},
								Action: commands.MemorySessionShowAction,
							},
						},
					},
				},
			},
		},
	}

	if err := app.Run(ctx, os.Args); err != nil {
		log.Fatal(err)
	}
}
