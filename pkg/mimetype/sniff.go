package mimetype

// Fallback is returned when no signature matches.
const Fallback = "application/octet-stream"

// magicTable maps leading byte signatures to mimetypes. A '.' byte in a
// signature matches any byte, which covers container formats that carry a
// length field before their format tag (RIFF, MP4). Order matters: the
// generic XML signature sits below the literal <svg one.
var magicTable = []struct {
	sig  []byte
	mime string
}{
	// Image
	{[]byte("GIF87a"), "image/gif"},
	{[]byte("GIF89a"), "image/gif"},
	{[]byte("\xFF\xD8\xFF"), "image/jpeg"},
	{[]byte("\x89PNG\x0D\x0A\x1A\x0A"), "image/png"},
	{[]byte("<svg "), "image/svg+xml"},
	{[]byte("RIFF....WEBPVP8"), "image/webp"},
	{[]byte("\x00\x00\x01\x00"), "image/x-icon"},
	// Audio
	{[]byte("ID3"), "audio/mpeg"},
	{[]byte("\xFF\x0E"), "audio/mpeg"},
	{[]byte("\xFF\x0F"), "audio/mpeg"},
	{[]byte("OggS"), "audio/ogg"},
	{[]byte("RIFF....WAVEfmt "), "audio/wav"},
	{[]byte("fLaC"), "audio/x-flac"},
	// Video
	{[]byte("RIFF....AVI LIST"), "video/avi"},
	{[]byte("....ftyp"), "video/mp4"},
	{[]byte("\x00\x00\x01\x0B"), "video/mpeg"},
	{[]byte("....moov"), "video/quicktime"},
	{[]byte("\x1A\x45\xDF\xA3"), "video/webm"},
	{[]byte("<?xml "), "image/svg+xml"},
}

// Sniff determines the mimetype of data from its leading bytes. Server
// supplied content types are never consulted. Unknown or empty content
// yields Fallback; Sniff never fails.
func Sniff(data []byte) string {
	for _, m := range magicTable {
		if matches(data, m.sig) {
			return m.mime
		}
	}
	return Fallback
}

func matches(data, sig []byte) bool {
	if len(data) < len(sig) {
		return false
	}
	for i, b := range sig {
		if b != '.' && data[i] != b {
			return false
		}
	}
	return true
}
