package flickr

import "github.com/ccfrost/albumdrop/internal/logging"

var logger = logging.New("flickr")
