package match

const (
	announcementTitle       = "🎮 内戦募集のお知らせ"
	titleSuffixClosed       = "（募集終了）"
	titleSuffixDeadlineOpen = "（募集締切: %s）"
	deadlineTimeLayout      = "01月02日 15時04分"
	announcementTimeLayout  = "2006-01-02 15:04"
	reminderTimeLayout      = "15時04分"
	footerFormatRecruiting  = "内戦 ID: %d | ボタンで参加、不参加は /naisen-absent"
	footerFormatClosed      = "内戦 ID: %d | 募集は終了しました。"
	fallbackDisplayNameFmt  = "ユーザーID(%s)"
)
