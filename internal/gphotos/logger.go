package gphotos

import "github.com/ccfrost/albumdrop/internal/logging"

var logger = logging.New("gphotos")
