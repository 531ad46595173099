package extract

// Feed DOM selectors. The service changes its markup often; keep every
// selector here.
const (
	PostArticle = `article[data-testid="tweet"]`
	PostText    = `div[data-testid="tweetText"]`
	PostAuthor  = `div[data-testid="User-Name"]`
	PostTime    = `time`

	ReplyButton     = `div[data-testid="reply"]`
	RetweetButton   = `div[data-testid="retweet"]`
	UnretweetButton = `div[data-testid="unretweet"]`
	LikeButton      = `div[data-testid="like"]`
	UnlikeButton    = `div[data-testid="unlike"]`

	// HomeMarker only renders for an authenticated session
	HomeMarker = `[data-testid="AppTabBar_Home_Link"]`

	ConsentConfirm = `div[role="dialog"] [data-testid="confirmationSheetConfirm"]`
	ConsentPrimary = `div[role="dialog"] [data-testid="sheetDialogPrimaryAction"]`
)

// ResultsFallbacks are structural containers that indicate a results page
// rendered even when no post article matched, tried in order.
var ResultsFallbacks = []string{
	`div[aria-label^="Timeline"][aria-label*="Search"]`,
	`div[aria-label*="Results"]`,
	`section[aria-labelledby^="accessible-list"]`,
	`main[role="main"]`,
}

// ConsentDialogs are dismissal buttons for interstitial dialogs
var ConsentDialogs = []string{ConsentConfirm, ConsentPrimary}
