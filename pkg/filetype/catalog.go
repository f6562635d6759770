package filetype

// Set is an ordered, immutable view over a list of strings with O(1)
// membership checks. Iteration order is the declaration order of the
// underlying catalog and is stable across versions of the same catalog.
type Set struct {
	list  []string
	index map[string]struct{}
}

func newSet(list []string) Set {
	index := make(map[string]struct{}, len(list))
	for _, v := range list {
		index[v] = struct{}{}
	}
	return Set{list: list, index: index}
}

// Contains reports whether v is in the set.
func (s Set) Contains(v string) bool {
	_, ok := s.index[v]
	return ok
}

// List returns the values in catalog order. The returned slice is a copy.
func (s Set) List() []string {
	out := make([]string, len(s.list))
	copy(out, s.list)
	return out
}

// Len returns the number of values in the set.
func (s Set) Len() int {
	return len(s.list)
}

// SupportedExtensions returns the catalog of extensions the detector can
// report.
func SupportedExtensions() Set {
	return extensionSet
}

// SupportedMIMETypes returns the catalog of MIME types the detector can
// report. Extensions and MIME types are independent sets: several extensions
// share a MIME type, and a few MIME types have no catalog extension of their
// own.
func SupportedMIMETypes() Set {
	return mimeTypeSet
}

var supportedExtensions = []string{
	"jpg",
	"png",
	"apng",
	"gif",
	"webp",
	"flif",
	"xcf",
	"cr2",
	"cr3",
	"orf",
	"arw",
	"dng",
	"nef",
	"rw2",
	"raf",
	"tif",
	"bmp",
	"icns",
	"jxr",
	"psd",
	"indd",
	"zip",
	"tar",
	"rar",
	"gz",
	"bz2",
	"7z",
	"dmg",
	"mp4",
	"mid",
	"mkv",
	"webm",
	"mov",
	"avi",
	"mpg",
	"mp1",
	"mp2",
	"mp3",
	"m4a",
	"m4b",
	"m4p",
	"m4v",
	"oga",
	"ogg",
	"ogv",
	"ogm",
	"ogx",
	"opus",
	"spx",
	"flac",
	"wav",
	"qcp",
	"amr",
	"pdf",
	"ai",
	"epub",
	"exe",
	"swf",
	"rtf",
	"wasm",
	"woff",
	"woff2",
	"eot",
	"ttf",
	"otf",
	"ico",
	"cur",
	"flv",
	"ps",
	"eps",
	"xz",
	"sqlite",
	"nes",
	"crx",
	"xpi",
	"cab",
	"deb",
	"ar",
	"rpm",
	"Z",
	"lz",
	"lzh",
	"cfb",
	"mxf",
	"mts",
	"blend",
	"bpg",
	"docx",
	"pptx",
	"xlsx",
	"odt",
	"ods",
	"odp",
	"3mf",
	"3gp",
	"3g2",
	"jp2",
	"jpx",
	"jpm",
	"mj2",
	"jxl",
	"mie",
	"shp",
	"arrow",
	"aac",
	"f4v",
	"f4p",
	"f4a",
	"f4b",
	"mpc",
	"wv",
	"dcm",
	"ics",
	"vcf",
	"glb",
	"pcap",
	"dsf",
	"lnk",
	"alias",
	"voc",
	"ac3",
	"it",
	"s3m",
	"xm",
	"ape",
	"mobi",
	"heic",
	"avif",
	"stl",
	"chm",
	"ktx",
	"asf",
	"skp",
	"pgp",
	"asar",
	"elf",
	"zst",
	"xml",
	"aif",
}

var supportedMIMETypes = []string{
	"image/jpeg",
	"image/png",
	"image/apng",
	"image/gif",
	"image/webp",
	"image/flif",
	"image/x-xcf",
	"image/x-canon-cr2",
	"image/x-canon-cr3",
	"image/x-olympus-orf",
	"image/x-sony-arw",
	"image/x-adobe-dng",
	"image/x-nikon-nef",
	"image/x-panasonic-rw2",
	"image/x-fujifilm-raf",
	"image/tiff",
	"image/bmp",
	"image/icns",
	"image/vnd.ms-photo",
	"image/vnd.adobe.photoshop",
	"application/x-indesign",
	"application/zip",
	"application/x-tar",
	"application/x-rar-compressed",
	"application/gzip",
	"application/x-bzip2",
	"application/x-7z-compressed",
	"application/x-apple-diskimage",
	"video/mp4",
	"audio/midi",
	"video/x-matroska",
	"video/webm",
	"video/quicktime",
	"video/vnd.avi",
	"video/mpeg",
	"video/MP1S",
	"video/MP2P",
	"audio/mpeg",
	"audio/x-m4a",
	"audio/mp4",
	"video/x-m4v",
	"audio/ogg",
	"video/ogg",
	"application/ogg",
	"audio/opus",
	"audio/x-flac",
	"audio/vnd.wave",
	"audio/qcelp",
	"audio/amr",
	"application/pdf",
	"application/epub+zip",
	"application/x-msdownload",
	"application/x-shockwave-flash",
	"application/rtf",
	"application/wasm",
	"font/woff",
	"font/woff2",
	"application/vnd.ms-fontobject",
	"font/ttf",
	"font/otf",
	"image/x-icon",
	"video/x-flv",
	"application/postscript",
	"application/eps",
	"application/x-xz",
	"application/x-sqlite3",
	"application/x-nintendo-nes-rom",
	"application/x-google-chrome-extension",
	"application/x-xpinstall",
	"application/vnd.ms-cab-compressed",
	"application/x-deb",
	"application/x-unix-archive",
	"application/x-rpm",
	"application/x-compress",
	"application/x-lzip",
	"application/x-lzh-compressed",
	"application/x-cfb",
	"application/mxf",
	"video/mp2t",
	"application/x-blender",
	"image/bpg",
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	"application/vnd.openxmlformats-officedocument.presentationml.presentation",
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	"application/vnd.oasis.opendocument.text",
	"application/vnd.oasis.opendocument.spreadsheet",
	"application/vnd.oasis.opendocument.presentation",
	"model/3mf",
	"video/3gpp",
	"video/3gpp2",
	"image/jp2",
	"image/jpx",
	"image/jpm",
	"image/mj2",
	"image/jxl",
	"application/x-mie",
	"application/x-esri-shape",
	"application/x-apache-arrow",
	"audio/aac",
	"audio/x-musepack",
	"audio/wavpack",
	"application/dicom",
	"text/calendar",
	"text/vcard",
	"model/gltf-binary",
	"model/stl",
	"application/vnd.tcpdump.pcap",
	"audio/x-dsf",
	"application/x.ms.shortcut",
	"application/x.apple.alias",
	"audio/x-voc",
	"audio/vnd.dolby.dd-raw",
	"audio/x-it",
	"audio/x-s3m",
	"audio/x-xm",
	"audio/ape",
	"application/x-mobipocket-ebook",
	"image/heic",
	"image/heic-sequence",
	"image/heif",
	"image/heif-sequence",
	"image/avif",
	"application/vnd.ms-htmlhelp",
	"image/ktx",
	"application/vnd.ms-asf",
	"audio/x-ms-asf",
	"video/x-ms-asf",
	"application/vnd.sketchup.skp",
	"application/pgp-encrypted",
	"application/x-asar",
	"application/x-elf",
	"application/zstd",
	"application/xml",
	"audio/aiff",
}

var (
	extensionSet = newSet(supportedExtensions)
	mimeTypeSet  = newSet(supportedMIMETypes)
)
