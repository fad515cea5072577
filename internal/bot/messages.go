package bot

const (
	messageEphemeralWrongGuild       = ":warning: **このサーバーでは実行できません。**"
	messageEphemeralUnknownCommand   = ":warning: **不明なコマンドです。**"
	messageEphemeralInvalidStartTime = ":warning: **開始時間の形式が正しくありません。（例: 21:00 / 午後9時）**"
	messageEphemeralInvalidDeadline  = ":warning: **募集締切時間の形式が正しくありません。（例: 23:50 / 午後11時50分）**"
	messageEphemeralInvalidGames     = ":warning: **ゲームを1つ以上入力してください。（カンマ区切り）**"
	messageEphemeralInvalidMatchID   = ":warning: **内戦IDが正しくありません。**"
	messageEphemeralNotFound         = ":warning: **指定された内戦が見つかりません。**"
	messageEphemeralNotHost          = ":warning: **自分が作成した内戦のみ削除できます。**"
	messageEphemeralClosed           = ":warning: **募集が終了または期限切れの内戦です。**"
	messageEphemeralAlreadyJoined    = ":warning: **既に参加済みです。参加を取り消すには /naisen-absent を使ってください。**"
	messageEphemeralUnknownActivity  = ":warning: **この内戦では募集していないゲームです。**"
	messageEphemeralInternalError    = ":warning: **処理中にエラーが発生しました。**"

	messageCreatedFormat  = ":crossed_swords: **内戦 ID %d を作成しました。**"
	messageDeletedFormat  = ":wastebasket: **内戦 ID %d を削除しました。**"
	messageConflictFormat = ":warning: **次のゲームは既に募集中です: %s**"
	messageJoinedFormat   = "『%s』の内戦に参加しました 😊（現在 %d名）"
	messageRejoinedFormat = "『%s』の不参加を取り消して再参加しました ☺️（現在 %d名）"
	messageAbsenceFormat  = "%d件のゲームに不参加（理由: %s）を登録しました。"

	deletedEmbedTitleFormat = "内戦 ID %d - 削除済み"
	deletedEmbedDescription = "この内戦は主催者によって削除されました。"

	embedFieldStartTime   = "⏰ 内戦開始時間"
	embedFieldDeadline    = "⏳ 募集締切時間"
	embedFieldGames       = "🎮 ゲーム一覧"
	embedFieldDescription = "📝 詳細"
	embedFieldAbsences    = "😥 不参加者"
	embedFieldHostFormat  = "**主催者:** <@%s>"

	participantFieldFormat = "➥ %s 参加者（%d名）"
	noParticipantsLine     = "まだ参加者がいません。"

	joinButtonSuffix = " に参加"

	embedColorRecruiting = 0xF1C40F
	embedColorClosed     = 0x95A5A6
	embedColorDeleted    = 0x992D22
)
