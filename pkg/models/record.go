package models

// CardRecord はAnkiConnectのcardsInfoが返すカード情報です
// Ease はストア側の格納値（実係数の1000倍の整数）をそのまま保持します
type CardRecord struct {
	CardID   int64  `json:"cardId"`
	NoteID   int64  `json:"note"`
	DeckName string `json:"deckName"`
	Type     string `json:"modelName"`
	Ease     int    `json:"factor"`   // 2500 = 2.5x
	Lapses   int    `json:"lapses"`   // 忘却回数
	Interval int    `json:"interval"` // 復習間隔（日数）
	Reps     int    `json:"reps"`     // 総復習回数
}

// EaseFactor は格納値を実際のease係数に変換して返します
func (c CardRecord) EaseFactor() float64 {
	return float64(c.Ease) / 1000.0
}

// NoteField はノートの1フィールドを表します
// Order はノートタイプ内でのフィールドの定義順です
type NoteField struct {
	Name  string `json:"name"`
	Value string `json:"value"`
	Order int    `json:"order"`
}

// NoteRecord はAnkiConnectのnotesInfoが返すノート情報です
// Fields は Order 昇順にソート済みであることを前提とします
type NoteRecord struct {
	NoteID   int64       `json:"noteId"`
	TypeName string      `json:"modelName"`
	Fields   []NoteField `json:"fields"`
	Tags     []string    `json:"tags"`
}

// FieldValue は指定した名前のフィールド値を返します
// 存在しない場合は空文字列を返します
func (n NoteRecord) FieldValue(name string) string {
	for _, f := range n.Fields {
		if f.Name == name {
			return f.Value
		}
	}
	return ""
}
