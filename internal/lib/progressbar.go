package lib

import (
	"io"
	"os"
	"time"

	"github.com/schollz/progressbar/v3"
)

// DownloadProgress draws a download progress bar on stderr. Downloads of
// unknown size get a spinner.
func DownloadProgress(description string) ProgressFunc {
	return func(total int64) io.Writer {
		return newDownloadBar(os.Stderr, total, description)
	}
}

func newDownloadBar(w io.Writer, total int64, description string) *progressbar.ProgressBar {
	opts := []progressbar.Option{
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetDescription(description + ":"),
		progressbar.OptionSetWidth(20), // Fit in an 80-column terminal.
		progressbar.OptionShowBytes(true),
		progressbar.OptionUseIECUnits(true),
		progressbar.OptionShowTotalBytes(true),
		progressbar.OptionThrottle(100 * time.Millisecond),
		progressbar.OptionShowElapsedTimeOnFinish(),
	}
	if total < 0 {
		opts = append(opts, progressbar.OptionSpinnerType(14))
	} else {
		opts = append(opts, progressbar.OptionSetPredictTime(true))
	}
	return progressbar.NewOptions64(total, opts...)
}
