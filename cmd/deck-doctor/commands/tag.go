package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/urfave/cli/v3"
)

// TagUpdateAction はノートのタグを追加・削除するコマンドのアクション
func TagUpdateAction(ctx context.Context, cmd *cli.Command) error {
	noteID := int64(cmd.Int("note-id"))
	tagsToAdd := splitTags(cmd.String("add"))
	tagsToRemove := splitTags(cmd.String("remove"))

	if len(tagsToAdd) == 0 && len(tagsToRemove) == 0 {
		return fmt.Errorf("--add か --remove の少なくとも一方を指定してください")
	}

	appCtx, err := NewAppContext(ctx, cmd.String("env"))
	if err != nil {
		return err
	}
	defer appCtx.Close()

	if len(tagsToAdd) > 0 {
		if err := appCtx.Anki.AddTags(ctx, []int64{noteID}, strings.Join(tagsToAdd, " ")); err != nil {
			return explainAnkiError(err)
		}
	}
	if len(tagsToRemove) > 0 {
		if err := appCtx.Anki.RemoveTags(ctx, []int64{noteID}, strings.Join(tagsToRemove, " ")); err != nil {
			return explainAnkiError(err)
		}
	}

	updated, err := appCtx.Anki.GetNoteTags(ctx, noteID)
	if err != nil {
		return explainAnkiError(err)
	}

	fmt.Printf("ノートID %d のタグを更新しました\n\n", noteID)
	if len(tagsToAdd) > 0 {
		fmt.Printf("追加: %s\n", strings.Join(tagsToAdd, ", "))
	}
	if len(tagsToRemove) > 0 {
		fmt.Printf("削除: %s\n", strings.Join(tagsToRemove, ", "))
	}
	fmt.Printf("\n現在のタグ: %s\n", joinOrNone(updated))

	return nil
}
