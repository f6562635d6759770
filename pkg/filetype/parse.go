package filetype

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"errors"
	"math"
	"strconv"
	"strings"

	"github.com/prakattuladhar/file-type/pkg/token"
	"github.com/prakattuladhar/file-type/pkg/tokenizer"
)

// Size of the resident sample buffer. Detection never looks further into the
// file than this, except where container walks advance the tokenizer.
const sampleBufferSize = 4100

var zipLocalFileHeader = []byte{0x50, 0x4B, 0x03, 0x04}

// parser owns the sample buffer and runs the probe cascade over a borrowed
// tokenizer.
type parser struct {
	tok  tokenizer.Tokenizer
	buf  []byte
	n    int // valid bytes in buf
	size int64
}

func newParser(tok tokenizer.Tokenizer) *parser {
	return &parser{
		tok: tok,
		buf: make([]byte, sampleBufferSize),
	}
}

// sample grows the peek window at the current position to length bytes.
// Re-peeks are idempotent with respect to the tokenizer position.
func (p *parser) sample(length int) error {
	if length > sampleBufferSize {
		length = sampleBufferSize
	}
	if p.n >= length {
		return nil
	}
	n, err := p.tok.PeekBuffer(p.buf[:length], &tokenizer.ReadOptions{MayBeLess: true})
	if err != nil {
		return err
	}
	p.n = n
	return nil
}

// check compares sig against the sample at offset. Sample bytes beyond the
// peeked length never match.
func (p *parser) check(sig []byte, offset int) bool {
	if offset+len(sig) > p.n {
		return false
	}
	for i, b := range sig {
		if p.buf[offset+i] != b {
			return false
		}
	}
	return true
}

// checkMask is like check but compares sig against the masked sample.
func (p *parser) checkMask(sig []byte, mask []byte, offset int) bool {
	if offset+len(sig) > p.n {
		return false
	}
	for i, b := range sig {
		if p.buf[offset+i]&mask[i] != b {
			return false
		}
	}
	return true
}

func (p *parser) checkString(sig string, offset int) bool {
	return p.check([]byte(sig), offset)
}

func result(ext string, mime string) (*FileType, error) {
	return &FileType{Ext: ext, MIME: mime}, nil
}

// parse runs the cascade from the tokenizer's current position. BOM and ID3
// handling re-enter it after advancing the cursor.
func (p *parser) parse() (*FileType, error) {
	fi := p.tok.FileInfo()
	if fi.Size == 0 {
		// Unknown size: use an effectively infinite sentinel so container
		// walks bounded by the position still make progress on pipes.
		fi.Size = math.MaxInt64
		p.tok.SetFileInfo(fi)
	}
	p.size = fi.Size

	p.n = 0
	err := p.sample(12)
	if err != nil {
		return nil, err
	}

	// -- 2-byte signatures --

	if p.check([]byte{0x42, 0x4D}, 0) {
		return result("bmp", "image/bmp")
	}

	if p.check([]byte{0x0B, 0x77}, 0) {
		return result("ac3", "audio/vnd.dolby.dd-raw")
	}

	if p.check([]byte{0x78, 0x01}, 0) {
		return result("dmg", "application/x-apple-diskimage")
	}

	if p.check([]byte{0x4D, 0x5A}, 0) {
		return result("exe", "application/x-msdownload")
	}

	if p.check([]byte{0x25, 0x21}, 0) {
		err = p.sample(24)
		if err != nil {
			return nil, err
		}
		if p.checkString(" EPSF-", 14) && p.checkString("PS-Adobe-", 2) {
			return result("eps", "application/eps")
		}
		return result("ps", "application/postscript")
	}

	if p.check([]byte{0x1F, 0xA0}, 0) || p.check([]byte{0x1F, 0x9D}, 0) {
		return result("Z", "application/x-compress")
	}

	// -- 3-byte signatures --

	if p.check([]byte{0xEF, 0xBB, 0xBF}, 0) {
		// UTF-8 BOM: strip it and detect the payload
		_, err = p.tok.Ignore(3)
		if err != nil {
			return nil, err
		}
		return p.parse()
	}

	if p.check([]byte{0x47, 0x49, 0x46}, 0) {
		return result("gif", "image/gif")
	}

	if p.check([]byte{0xFF, 0xD8, 0xFF}, 0) {
		return result("jpg", "image/jpeg")
	}

	if p.check([]byte{0x49, 0x49, 0xBC}, 0) {
		return result("jxr", "image/vnd.ms-photo")
	}

	if p.check([]byte{0x1F, 0x8B, 0x08}, 0) {
		return result("gz", "application/gzip")
	}

	if p.check([]byte{0x42, 0x5A, 0x68}, 0) {
		return result("bz2", "application/x-bzip2")
	}

	if p.checkString("ID3", 0) {
		return p.parseID3()
	}

	if p.checkString("MP+", 0) {
		return result("mpc", "audio/x-musepack")
	}

	if p.check([]byte{0x43, 0x57, 0x53}, 0) || p.check([]byte{0x46, 0x57, 0x53}, 0) {
		return result("swf", "application/x-shockwave-flash")
	}

	// -- 4-byte signatures --

	if p.checkString("FLIF", 0) {
		return result("flif", "image/flif")
	}

	if p.checkString("8BPS", 0) {
		return result("psd", "image/vnd.adobe.photoshop")
	}

	if p.checkString("WEBP", 8) {
		return result("webp", "image/webp")
	}

	// Musepack, SV8
	if p.checkString("MPCK", 0) {
		return result("mpc", "audio/x-musepack")
	}

	if p.checkString("FORM", 0) {
		return result("aif", "audio/aiff")
	}

	if p.checkString("icns", 0) {
		return result("icns", "image/icns")
	}

	// Zip-based file formats
	// Need to be before the `zip` check
	if p.check(zipLocalFileHeader, 0) {
		return p.parseZip()
	}

	if p.checkString("OggS", 0) {
		return p.parseOgg()
	}

	if p.n >= 4 && p.check([]byte{0x50, 0x4B}, 0) &&
		(p.buf[2] == 0x3 || p.buf[2] == 0x5 || p.buf[2] == 0x7) &&
		(p.buf[3] == 0x4 || p.buf[3] == 0x6 || p.buf[3] == 0x8) {
		return result("zip", "application/zip")
	}

	// File Type Box (https://en.wikipedia.org/wiki/ISO_base_media_file_format)
	// It's not required to be first, but it's recommended to be. Almost all ISO base media files start with `ftyp` box.
	if p.checkString("ftyp", 4) && p.n >= 12 && p.buf[8]&0x60 != 0 {
		// `ftyp` box must contain a brand major identifier, which must consist of ISO 8859-1 printable characters.
		// Here we check for 8859-1 printable characters (for simplicity, it's a mask which also catches one non-printable character).
		return p.parseFtyp()
	}

	if p.checkString("MThd", 0) {
		return result("mid", "audio/midi")
	}

	if p.checkString("wOFF", 0) &&
		(p.check([]byte{0x00, 0x01, 0x00, 0x00}, 4) || p.checkString("OTTO", 4)) {
		return result("woff", "font/woff")
	}

	if p.checkString("wOF2", 0) &&
		(p.check([]byte{0x00, 0x01, 0x00, 0x00}, 4) || p.checkString("OTTO", 4)) {
		return result("woff2", "font/woff2")
	}

	if p.check([]byte{0xD4, 0xC3, 0xB2, 0xA1}, 0) || p.check([]byte{0xA1, 0xB2, 0xC3, 0xD4}, 0) {
		return result("pcap", "application/vnd.tcpdump.pcap")
	}

	// Sony DSD Stream File (DSF)
	if p.checkString("DSD ", 0) {
		return result("dsf", "audio/x-dsf")
	}

	if p.checkString("LZIP", 0) {
		return result("lz", "application/x-lzip")
	}

	if p.checkString("fLaC", 0) {
		return result("flac", "audio/x-flac")
	}

	if p.check([]byte{0x42, 0x50, 0x47, 0xFB}, 0) {
		return result("bpg", "image/bpg")
	}

	if p.checkString("wvpk", 0) {
		return result("wv", "audio/wavpack")
	}

	if p.checkString("%PDF", 0) {
		return p.parsePDF()
	}

	if p.check([]byte{0x00, 0x61, 0x73, 0x6D}, 0) {
		return result("wasm", "application/wasm")
	}

	// TIFF, little-endian type
	if p.check([]byte{0x49, 0x49}, 0) {
		ft, err := p.parseTiff(binary.LittleEndian)
		if err != nil || ft != nil {
			return ft, err
		}
	}

	// TIFF, big-endian type
	if p.check([]byte{0x4D, 0x4D}, 0) {
		ft, err := p.parseTiff(binary.BigEndian)
		if err != nil || ft != nil {
			return ft, err
		}
	}

	if p.checkString("MAC ", 0) {
		return result("ape", "audio/ape")
	}

	// https://github.com/threatstack/libmagic/blob/master/magic/Magdir/matroska
	if p.check([]byte{0x1A, 0x45, 0xDF, 0xA3}, 0) { // Root element: EBML
		return p.parseEBML()
	}

	// RIFF file format which might be AVI, WAV, QCP, etc
	if p.check([]byte{0x52, 0x49, 0x46, 0x46}, 0) {
		if p.check([]byte{0x41, 0x56, 0x49}, 8) {
			return result("avi", "video/vnd.avi")
		}
		if p.check([]byte{0x57, 0x41, 0x56, 0x45}, 8) {
			return result("wav", "audio/vnd.wave")
		}
		// QLCM, QCP file
		if p.check([]byte{0x51, 0x4C, 0x43, 0x4D}, 8) {
			return result("qcp", "audio/qcelp")
		}
	}

	if p.checkString("SQLi", 0) {
		return result("sqlite", "application/x-sqlite3")
	}

	if p.check([]byte{0x4E, 0x45, 0x53, 0x1A}, 0) {
		return result("nes", "application/x-nintendo-nes-rom")
	}

	if p.checkString("Cr24", 0) {
		return result("crx", "application/x-google-chrome-extension")
	}

	if p.checkString("MSCF", 0) || p.checkString("ISc(", 0) {
		return result("cab", "application/vnd.ms-cab-compressed")
	}

	if p.check([]byte{0xED, 0xAB, 0xEE, 0xDB}, 0) {
		return result("rpm", "application/x-rpm")
	}

	if p.check([]byte{0xC5, 0xD0, 0xD3, 0xC6}, 0) {
		return result("eps", "application/eps")
	}

	if p.check([]byte{0x28, 0xB5, 0x2F, 0xFD}, 0) {
		return result("zst", "application/zstd")
	}

	if p.check([]byte{0x7F, 0x45, 0x4C, 0x46}, 0) {
		return result("elf", "application/x-elf")
	}

	// -- 5-byte signatures --

	if p.check([]byte{0x4F, 0x54, 0x54, 0x4F, 0x00}, 0) {
		return result("otf", "font/otf")
	}

	if p.checkString("#!AMR", 0) {
		return result("amr", "audio/amr")
	}

	if p.checkString("{\\rtf", 0) {
		return result("rtf", "application/rtf")
	}

	if p.check([]byte{0x46, 0x4C, 0x56, 0x01}, 0) {
		return result("flv", "video/x-flv")
	}

	if p.checkString("IMPM", 0) {
		return result("it", "audio/x-it")
	}

	if p.checkString("-lh0-", 2) || p.checkString("-lh1-", 2) ||
		p.checkString("-lh2-", 2) || p.checkString("-lh3-", 2) ||
		p.checkString("-lh4-", 2) || p.checkString("-lh5-", 2) ||
		p.checkString("-lh6-", 2) || p.checkString("-lh7-", 2) ||
		p.checkString("-lzs-", 2) || p.checkString("-lz4-", 2) ||
		p.checkString("-lz5-", 2) || p.checkString("-lhd-", 2) {
		return result("lzh", "application/x-lzh-compressed")
	}

	// MPEG program stream (PS or MPEG-PS)
	if p.check([]byte{0x00, 0x00, 0x01, 0xBA}, 0) {
		// MPEG-PS, MPEG-1 Part 1
		if p.checkMask([]byte{0x21}, []byte{0xF1}, 4) {
			return result("mpg", "video/MP1S") // May also be .ps, .mpeg
		}
		// MPEG-PS, MPEG-2 Part 1
		if p.checkMask([]byte{0x44}, []byte{0xC4}, 4) {
			return result("mpg", "video/MP2P") // May also be .m2p, .vob or .sub
		}
	}

	if p.checkString("ITSF", 0) {
		return result("chm", "application/vnd.ms-htmlhelp")
	}

	// -- 6-byte signatures --

	if p.check([]byte{0xFD, 0x37, 0x7A, 0x58, 0x5A, 0x00}, 0) {
		return result("xz", "application/x-xz")
	}

	if p.checkString("<?xml ", 0) {
		return result("xml", "application/xml")
	}

	if p.check([]byte{0x37, 0x7A, 0xBC, 0xAF, 0x27, 0x1C}, 0) {
		return result("7z", "application/x-7z-compressed")
	}

	if p.checkString("solid ", 0) {
		return result("stl", "model/stl")
	}

	// -- 7-byte signatures --

	if p.check([]byte{0x52, 0x61, 0x72, 0x21, 0x1A, 0x07, 0x00}, 0) ||
		p.check([]byte{0x52, 0x61, 0x72, 0x21, 0x1A, 0x07, 0x01}, 0) {
		return result("rar", "application/x-rar-compressed")
	}

	if p.checkString("BLENDER", 0) {
		return result("blend", "application/x-blender")
	}

	if p.checkString("!<arch>", 0) {
		return p.parseAr()
	}

	// -- 8-byte signatures --

	if p.check([]byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}, 0) {
		return p.parsePNG()
	}

	if p.check([]byte{0x41, 0x52, 0x52, 0x4F, 0x57, 0x31, 0x00, 0x00}, 0) {
		return result("arrow", "application/x-apache-arrow")
	}

	if p.check([]byte{0x67, 0x6C, 0x54, 0x46, 0x02, 0x00, 0x00, 0x00}, 0) {
		return result("glb", "model/gltf-binary")
	}

	// `mov` format variants
	if p.checkString("free", 4) ||
		p.checkString("mdat", 4) || // MJPEG
		p.checkString("moov", 4) ||
		p.checkString("wide", 4) {
		return result("mov", "video/quicktime")
	}

	// -- 9-byte signatures --

	if p.check([]byte{0x49, 0x49, 0x52, 0x4F, 0x08, 0x00, 0x00, 0x00, 0x18}, 0) {
		return result("orf", "image/x-olympus-orf")
	}

	if p.checkString("gimp xcf ", 0) {
		return result("xcf", "image/x-xcf")
	}

	// -- 12-byte signatures --

	if p.check([]byte{0x49, 0x49, 0x55, 0x00, 0x18, 0x00, 0x00, 0x00, 0x88, 0xE7, 0x74, 0xD8}, 0) {
		return result("rw2", "image/x-panasonic-rw2")
	}

	// ASF_Header_Object first 10 bytes
	if p.check([]byte{0x30, 0x26, 0xB2, 0x75, 0x8E, 0x66, 0xCF, 0x11, 0xA6, 0xD9}, 0) {
		return p.parseASF()
	}

	if p.check([]byte{0xAB, 0x4B, 0x54, 0x58, 0x20, 0x31, 0x31, 0xBB, 0x0D, 0x0A, 0x1A, 0x0A}, 0) {
		return result("ktx", "image/ktx")
	}

	if (p.check([]byte{0x7E, 0x10, 0x04}, 0) || p.check([]byte{0x7E, 0x18, 0x04}, 0)) &&
		p.check([]byte{0x30, 0x4D, 0x49, 0x45}, 4) {
		return result("mie", "application/x-mie")
	}

	// The shapefile signature spans bytes 2..14, past the initial 12-byte sample
	err = p.sample(14)
	if err != nil {
		return nil, err
	}
	if p.check([]byte{0x27, 0x0A, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00}, 2) {
		return result("shp", "application/x-esri-shape")
	}

	if p.check([]byte{0x00, 0x00, 0x00, 0x0C, 0x6A, 0x50, 0x20, 0x20, 0x0D, 0x0A, 0x87, 0x0A}, 0) {
		// JPEG-2000 family
		return p.parseJP2()
	}

	if p.check([]byte{0xFF, 0x0A}, 0) ||
		p.check([]byte{0x00, 0x00, 0x00, 0x0C, 0x4A, 0x58, 0x4C, 0x20, 0x0D, 0x0A, 0x87, 0x0A}, 0) {
		return result("jxl", "image/jxl")
	}

	if p.check([]byte{0xFE, 0xFF}, 0) { // UTF-16 BE BOM
		if p.check([]byte{0, 60, 0, 63, 0, 120, 0, 109, 0, 108}, 2) {
			return result("xml", "application/xml")
		}
		return nil, nil // Undetermined
	}

	if p.check([]byte{0xFF, 0xFE}, 0) { // UTF-16 LE BOM
		if p.check([]byte{60, 0, 63, 0, 120, 0, 109, 0, 108, 0}, 2) {
			return result("xml", "application/xml")
		}
		err = p.sample(36)
		if err != nil {
			return nil, err
		}
		if p.check([]byte{
			0xFF, 0x0E, 0x53, 0x00, 0x6B, 0x00, 0x65, 0x00, 0x74, 0x00,
			0x63, 0x00, 0x68, 0x00, 0x55, 0x00, 0x70, 0x00, 0x20, 0x00,
			0x4D, 0x00, 0x6F, 0x00, 0x64, 0x00, 0x65, 0x00, 0x6C, 0x00,
		}, 2) {
			return result("skp", "application/vnd.sketchup.skp")
		}
		return nil, nil // Undetermined
	}

	// -- Unsafe signatures --

	if p.check([]byte{0x00, 0x00, 0x01, 0xBA}, 0) || p.check([]byte{0x00, 0x00, 0x01, 0xB3}, 0) {
		return result("mpg", "video/mpeg")
	}

	if p.check([]byte{0x00, 0x01, 0x00, 0x00, 0x00}, 0) {
		return result("ttf", "font/ttf")
	}

	if p.check([]byte{0x00, 0x00, 0x01, 0x00}, 0) {
		return result("ico", "image/x-icon")
	}

	if p.check([]byte{0x00, 0x00, 0x02, 0x00}, 0) {
		return result("cur", "image/x-icon")
	}

	if p.check([]byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}, 0) {
		// Microsoft Compound File Binary File (MS-CFB) Format
		return result("cfb", "application/x-cfb")
	}

	// Increase sample size from 14 to 256
	err = p.sample(256)
	if err != nil {
		return nil, err
	}

	if p.checkString("BEGIN:VCARD", 0) {
		return result("vcf", "text/vcard")
	}

	if p.checkString("BEGIN:VCALENDAR", 0) {
		return result("ics", "text/calendar")
	}

	// `raf` is here just to keep all the raw image detectors together.
	if p.checkString("FUJIFILMCCD-RAW", 0) {
		return result("raf", "image/x-fujifilm-raf")
	}

	if p.checkString("Extended Module:", 0) {
		return result("xm", "audio/x-xm")
	}

	if p.checkString("Creative Voice File", 0) {
		return result("voc", "audio/x-voc")
	}

	if p.check([]byte{0x04, 0x00, 0x00, 0x00}, 0) && p.n >= 16 { // Rough & quick check for Pickle/ASAR
		ft, err := p.parseASAR()
		if err != nil || ft != nil {
			return ft, err
		}
	}

	if p.check([]byte{0x06, 0x0E, 0x2B, 0x34, 0x02, 0x05, 0x01, 0x01, 0x0D, 0x01, 0x02, 0x01, 0x01, 0x02}, 0) {
		return result("mxf", "application/mxf")
	}

	if p.checkString("SCRM", 44) {
		return result("s3m", "audio/x-s3m")
	}

	// Raw MPEG-2 transport stream (188-byte packets)
	if p.check([]byte{0x47}, 0) && p.check([]byte{0x47}, 188) {
		return result("mts", "video/mp2t")
	}

	// Blu-ray Disc Audio-Video (BDAV) MPEG-2 transport stream has 4-byte TP_extra_header before each 188-byte packet
	if p.check([]byte{0x47}, 4) && p.check([]byte{0x47}, 196) {
		return result("mts", "video/mp2t")
	}

	if p.check([]byte{0x42, 0x4F, 0x4F, 0x4B, 0x4D, 0x4F, 0x42, 0x49}, 60) {
		return result("mobi", "application/x-mobipocket-ebook")
	}

	if p.check([]byte{0x44, 0x49, 0x43, 0x4D}, 128) {
		return result("dcm", "application/dicom")
	}

	if p.check([]byte{0x4C, 0x00, 0x00, 0x00, 0x01, 0x14, 0x02, 0x00, 0x00, 0x00, 0x00, 0x00, 0xC0, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x46}, 0) {
		return result("lnk", "application/x.ms.shortcut") // Invented by us
	}

	if p.check([]byte{0x62, 0x6F, 0x6F, 0x6B, 0x00, 0x00, 0x00, 0x00, 0x6D, 0x61, 0x72, 0x6B, 0x00, 0x00, 0x00, 0x00}, 0) {
		return result("alias", "application/x.apple.alias") // Invented by us
	}

	if p.check([]byte{0x4C, 0x50}, 34) &&
		(p.check([]byte{0x00, 0x00, 0x01}, 8) ||
			p.check([]byte{0x01, 0x00, 0x02}, 8) ||
			p.check([]byte{0x02, 0x00, 0x02}, 8)) {
		return result("eot", "application/vnd.ms-fontobject")
	}

	if p.check([]byte{0x06, 0x06, 0xED, 0xF5, 0xD8, 0x1D, 0x46, 0xE5, 0xBD, 0x31, 0xEF, 0xE7, 0xFE, 0x74, 0xB7, 0x1D}, 0) {
		return result("indd", "application/x-indesign")
	}

	// Check for MPEG header at different starting offsets
	// MPEG 1 or 2 layer header, or the 12-bit sync word 0xFFE of ADTS
	if p.checkMask([]byte{0xFF, 0xE0}, []byte{0xFF, 0xE0}, 0) {
		if p.checkMask([]byte{0x10}, []byte{0x16}, 1) {
			// ADTS, MPEG-2 or MPEG-4
			return result("aac", "audio/aac")
		}
		// MPEG 1 or 2 layer 3
		if p.checkMask([]byte{0x02}, []byte{0x06}, 1) {
			return result("mp3", "audio/mpeg")
		}
		// MPEG 1 or 2 layer 2
		if p.checkMask([]byte{0x04}, []byte{0x06}, 1) {
			return result("mp2", "audio/mpeg")
		}
		// MPEG 1 or 2 layer 1
		if p.checkMask([]byte{0x06}, []byte{0x06}, 1) {
			return result("mp1", "audio/mpeg")
		}
	}

	// Increase sample size from 256 to 512
	err = p.sample(512)
	if err != nil {
		return nil, err
	}

	// Requires a buffer size of 512 bytes
	if p.n >= 512 && tarHeaderChecksumMatches(p.buf[:512]) {
		return result("tar", "application/x-tar")
	}

	if p.checkString("-----BEGIN PGP MESSAGE-----", 0) {
		return result("pgp", "application/pgp-encrypted")
	}

	return nil, nil
}

// parseID3 skips an ID3v2 container and re-enters detection on the payload.
func (p *parser) parseID3() (*FileType, error) {
	_, err := p.tok.Ignore(6)
	if err != nil {
		return nil, err
	}
	headerLen, err := p.tok.ReadNumber(token.UINT32SYNCSAFE)
	if err != nil {
		return nil, err
	}

	if p.tok.Position()+int64(headerLen) > p.size {
		// The file is cut off before the end of the ID3 header: guess based
		// on the header alone
		return result("mp3", "audio/mpeg")
	}

	_, err = p.tok.Ignore(int64(headerLen))
	if err != nil {
		return nil, err
	}

	// Recursion, after having skipped the ID3 header
	return p.parse()
}

// parseZip walks the ZIP local file headers looking for an entry that marks
// one of the ZIP-based document formats. Reaching the end of the archive (or
// of the stream) without one means a plain ZIP.
func (p *parser) parseZip() (*FileType, error) {
	header := make([]byte, 30)

walk:
	for p.tok.Position()+30 < p.size {
		_, err := p.tok.ReadBuffer(header, nil)
		if errors.Is(err, tokenizer.ErrEndOfStream) {
			break
		}
		if err != nil {
			return nil, err
		}

		// https://en.wikipedia.org/wiki/Zip_(file_format)#File_headers
		compressedSize := binary.LittleEndian.Uint32(header[18:22])
		uncompressedSize := binary.LittleEndian.Uint32(header[22:26])
		filenameLength := binary.LittleEndian.Uint16(header[26:28])
		extraFieldLength := binary.LittleEndian.Uint16(header[28:30])

		filename, err := p.tok.ReadString(token.StringType{N: int(filenameLength)})
		if errors.Is(err, tokenizer.ErrEndOfStream) {
			break
		}
		if err != nil {
			return nil, err
		}
		_, err = p.tok.Ignore(int64(extraFieldLength))
		if err != nil {
			return nil, err
		}

		// Assumes signed `.xpi` from addons.mozilla.org
		if filename == "META-INF/mozilla.rsa" {
			return result("xpi", "application/x-xpinstall")
		}

		// The docx, xlsx and pptx file types extend the Office Open XML file format:
		// https://en.wikipedia.org/wiki/Office_Open_XML_file_formats
		// MS Office, OpenOffice and LibreOffice may put the parts in different
		// order, so the check must not rely on it.
		if strings.HasSuffix(filename, ".rels") || strings.HasSuffix(filename, ".xml") {
			first := filename
			if idx := strings.IndexByte(filename, '/'); idx > -1 {
				first = filename[0:idx]
			}
			switch first {
			case "word":
				return result("docx", "application/vnd.openxmlformats-officedocument.wordprocessingml.document")
			case "ppt":
				return result("pptx", "application/vnd.openxmlformats-officedocument.presentationml.presentation")
			case "xl":
				return result("xlsx", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
			}
		}

		if strings.HasPrefix(filename, "xl/") {
			return result("xlsx", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		}

		if strings.HasPrefix(filename, "3D/") && strings.HasSuffix(filename, ".model") {
			return result("3mf", "model/3mf")
		}

		if filename == "mimetype" && compressedSize == uncompressedSize {
			// The mimetype entry is STORED, so the payload is the MIME string
			mimeType, err := p.tok.ReadString(token.StringType{N: int(compressedSize)})
			if errors.Is(err, tokenizer.ErrEndOfStream) {
				break
			}
			if err != nil {
				return nil, err
			}

			switch strings.TrimSpace(mimeType) {
			case "application/epub+zip":
				return result("epub", "application/epub+zip")
			case "application/vnd.oasis.opendocument.text":
				return result("odt", "application/vnd.oasis.opendocument.text")
			case "application/vnd.oasis.opendocument.spreadsheet":
				return result("ods", "application/vnd.oasis.opendocument.spreadsheet")
			case "application/vnd.oasis.opendocument.presentation":
				return result("odp", "application/vnd.oasis.opendocument.presentation")
			}
		} else if compressedSize == 0 {
			// Try to find the next header manually when the current one is corrupted
			window := make([]byte, 4000)
			for {
				n, err := p.tok.PeekBuffer(window, &tokenizer.ReadOptions{MayBeLess: true})
				if err != nil {
					return nil, err
				}
				if n == 0 {
					break walk
				}
				idx := bytes.Index(window[:n], zipLocalFileHeader)
				if idx >= 0 {
					_, err = p.tok.Ignore(int64(idx))
					if err != nil {
						return nil, err
					}
					break
				}
				_, err = p.tok.Ignore(int64(n))
				if err != nil {
					return nil, err
				}
			}
		} else {
			_, err = p.tok.Ignore(int64(compressedSize))
			if err != nil {
				return nil, err
			}
		}
	}

	return result("zip", "application/zip")
}

// parseOgg inspects the payload of the first Ogg page to tell the codecs
// apart.
func (p *parser) parseOgg() (*FileType, error) {
	header := make([]byte, 8)
	_, err := p.tok.PeekBuffer(header, &tokenizer.ReadOptions{Position: 28})
	if err != nil {
		return nil, err
	}

	// Needs to be before the `ogg` check
	if bytes.HasPrefix(header, []byte("OpusHead")) {
		return result("opus", "audio/opus")
	}

	// If '\x80theora' in header
	if bytes.HasPrefix(header, []byte{0x80, 0x74, 0x68, 0x65, 0x6F, 0x72, 0x61}) {
		return result("ogv", "video/ogg")
	}

	// If '\x01video' in header
	if bytes.HasPrefix(header, []byte{0x01, 0x76, 0x69, 0x64, 0x65, 0x6F, 0x00}) {
		return result("ogm", "video/ogg")
	}

	// If '\x7fFLAC' in header: https://xiph.org/flac/faq.html
	if bytes.HasPrefix(header, []byte{0x7F, 0x46, 0x4C, 0x41, 0x43}) {
		return result("oga", "audio/ogg")
	}

	// 'Speex  ' in header: https://en.wikipedia.org/wiki/Speex
	if bytes.HasPrefix(header, []byte{0x53, 0x70, 0x65, 0x65, 0x78, 0x20, 0x20}) {
		return result("spx", "audio/ogg")
	}

	// If '\x01vorbis' in header
	if bytes.HasPrefix(header, []byte{0x01, 0x76, 0x6F, 0x72, 0x62, 0x69, 0x73}) {
		return result("ogg", "audio/ogg")
	}

	// Default Ogg container: https://www.iana.org/assignments/media-types/application/ogg
	return result("ogx", "application/ogg")
}

// parseFtyp maps the 4-byte brand major of an ISO base media file to its
// sub-format. The brand bytes are already in the sample at offset 8.
func (p *parser) parseFtyp() (*FileType, error) {
	brand := make([]byte, 4)
	copy(brand, p.buf[8:12])
	for i := range brand {
		if brand[i]&0x60 == 0 || brand[i] == 0x00 {
			brand[i] = 0x20
		}
	}
	brandMajor := string(bytes.TrimSpace(brand))

	switch brandMajor {
	case "avif", "avis":
		return result("avif", "image/avif")
	case "mif1":
		return result("heic", "image/heif")
	case "msf1":
		return result("heic", "image/heif-sequence")
	case "heic", "heix":
		return result("heic", "image/heic")
	case "hevc", "hevx":
		return result("heic", "image/heic-sequence")
	case "qt":
		return result("mov", "video/quicktime")
	case "M4V", "M4VH", "M4VP":
		return result("m4v", "video/x-m4v")
	case "M4P":
		return result("m4p", "video/mp4")
	case "M4B":
		return result("m4b", "audio/mp4")
	case "M4A":
		return result("m4a", "audio/x-m4a")
	case "F4V":
		return result("f4v", "video/mp4")
	case "F4P":
		return result("f4p", "video/mp4")
	case "F4A":
		return result("f4a", "audio/mp4")
	case "F4B":
		return result("f4b", "audio/mp4")
	case "crx":
		return result("cr3", "image/x-canon-cr3")
	default:
		if strings.HasPrefix(brandMajor, "3g") {
			if strings.HasPrefix(brandMajor, "3g2") {
				return result("3g2", "video/3gpp2")
			}
			return result("3gp", "video/3gpp")
		}
		return result("mp4", "video/mp4")
	}
}

// parsePDF tells Adobe Illustrator files apart from plain PDFs by searching
// the first portion of the document for the AIPrivateData marker.
func (p *parser) parsePDF() (*FileType, error) {
	_, err := p.tok.Ignore(1350)
	if err != nil {
		return nil, err
	}

	maxRead := int64(10 * 1024 * 1024)
	if p.size < maxRead {
		maxRead = p.size
	}
	read := make([]byte, maxRead)
	n, err := p.tok.ReadBuffer(read, &tokenizer.ReadOptions{MayBeLess: true})
	if err != nil {
		return nil, err
	}

	if bytes.Contains(read[:n], []byte("AIPrivateData")) {
		return result("ai", "application/postscript")
	}

	return result("pdf", "application/pdf")
}

// parseTiff reads the TIFF header, recognizing the raw-photo descendants
// before falling back to plain TIFF. A nil, nil return means the header was
// not a TIFF at all and the cascade continues.
func (p *parser) parseTiff(bo binary.ByteOrder) (*FileType, error) {
	if p.n < 8 {
		return nil, nil
	}
	version := bo.Uint16(p.buf[2:4])
	ifdOffset := bo.Uint32(p.buf[4:8])

	// Big TIFF file header
	if version == 43 {
		return result("tif", "image/tiff")
	}

	if version != 42 {
		return nil, nil
	}

	// TIFF file header
	if ifdOffset >= 6 && p.n >= 10 && string(p.buf[8:10]) == "CR" {
		return result("cr2", "image/x-canon-cr2")
	}
	if ifdOffset >= 8 && p.n >= 12 &&
		(bytes.Equal(p.buf[8:12], []byte{0x1C, 0x00, 0xFE, 0x00}) ||
			bytes.Equal(p.buf[8:12], []byte{0x1F, 0x00, 0x0B, 0x00})) {
		return result("nef", "image/x-nikon-nef")
	}

	// Walk the IFD tags: some raw formats are plain TIFF except for a
	// vendor tag
	numBuf := make([]byte, 2)
	_, err := p.tok.ReadBuffer(numBuf, &tokenizer.ReadOptions{Position: int64(ifdOffset)})
	if err != nil {
		return nil, err
	}
	numberOfTags := bo.Uint16(numBuf)

	for n := uint16(0); n < numberOfTags; n++ {
		_, err = p.tok.ReadBuffer(numBuf, nil)
		if err != nil {
			return nil, err
		}
		tagID := bo.Uint16(numBuf)
		switch tagID {
		case 50_341:
			return result("arw", "image/x-sony-arw")
		case 50_706:
			return result("dng", "image/x-adobe-dng")
		}
		_, err = p.tok.Ignore(10)
		if err != nil {
			return nil, err
		}
	}

	return result("tif", "image/tiff")
}

// parseEBML walks the EBML tree to find the DocType of a Matroska-family
// container.
func (p *parser) parseEBML() (*FileType, error) {
	_, l, err := p.readEBMLElement()
	if err != nil {
		return nil, err
	}
	docType, err := p.readEBMLChildren(l)
	if err != nil {
		return nil, err
	}

	switch docType {
	case "webm":
		return result("webm", "video/webm")
	case "matroska":
		return result("mkv", "video/x-matroska")
	default:
		return nil, nil
	}
}

// readEBMLField reads one variable-width EBML field. The number of leading
// zero bits of the first byte encodes the field width (1..8 bytes).
func (p *parser) readEBMLField() ([]byte, error) {
	msb, err := p.tok.PeekNumber(token.UINT8)
	if err != nil {
		return nil, err
	}

	var mask uint8 = 0x80
	width := 1
	for uint8(msb)&mask == 0 && mask != 0 {
		width++
		mask >>= 1
	}

	field := make([]byte, width)
	_, err = p.tok.ReadBuffer(field, nil)
	if err != nil {
		return nil, err
	}
	return field, nil
}

// readEBMLElement reads an (id, length) pair. The length field's leading
// marker bit is cleared before decoding.
func (p *parser) readEBMLElement() (id uint64, length uint64, err error) {
	idField, err := p.readEBMLField()
	if err != nil {
		return 0, 0, err
	}
	lengthField, err := p.readEBMLField()
	if err != nil {
		return 0, 0, err
	}

	lengthField[0] ^= 0x80 >> (len(lengthField) - 1)
	return bytesToUintBE(idField), bytesToUintBE(lengthField), nil
}

// readEBMLChildren iterates the children of the root element until the
// DocType element (id 0x4282) is found, ignoring all other payloads.
func (p *parser) readEBMLChildren(children uint64) (string, error) {
	for children > 0 {
		id, l, err := p.readEBMLElement()
		if err != nil {
			return "", err
		}
		if l > math.MaxInt32 {
			return "", nil
		}
		if id == 0x42_82 {
			rawValue, err := p.tok.ReadString(token.StringType{N: int(l)})
			if err != nil {
				return "", err
			}
			// Strip anything after a trailing NUL
			if idx := strings.IndexByte(rawValue, 0x00); idx > -1 {
				rawValue = rawValue[0:idx]
			}
			return rawValue, nil
		}

		_, err = p.tok.Ignore(int64(l)) // ignore payload
		if err != nil {
			return "", err
		}
		children--
	}
	return "", nil
}

// parseASF walks the ASF header objects looking for the
// Stream-Properties-Object, which tells audio from video. The search is
// bounded by the header sizes themselves.
func (p *parser) parseASF() (*FileType, error) {
	_, err := p.tok.Ignore(30)
	if err != nil {
		return nil, err
	}

	header := make([]byte, 24)
	for p.tok.Position()+24 < p.size {
		_, err = p.tok.ReadBuffer(header, nil)
		if errors.Is(err, tokenizer.ErrEndOfStream) {
			break
		}
		if err != nil {
			return nil, err
		}

		objSize := binary.LittleEndian.Uint64(header[16:24])
		if objSize == 0 || objSize > math.MaxInt32 {
			break
		}

		if bytes.Equal(header[0:16], []byte{0x91, 0x07, 0xDC, 0xB7, 0xB7, 0xA9, 0xCF, 0x11, 0x8E, 0xE6, 0x00, 0xC0, 0x0C, 0x20, 0x53, 0x65}) {
			// Sync on Stream-Properties-Object (B7DC0791-A9B7-11CF-8EE6-00C00C205365)
			streamType := make([]byte, 16)
			_, err = p.tok.ReadBuffer(streamType, nil)
			if errors.Is(err, tokenizer.ErrEndOfStream) {
				break
			}
			if err != nil {
				return nil, err
			}

			if bytes.Equal(streamType, []byte{0x40, 0x9E, 0x69, 0xF8, 0x4D, 0x5B, 0xCF, 0x11, 0xA8, 0xFD, 0x00, 0x80, 0x5F, 0x5C, 0x44, 0x2B}) {
				// Found audio
				return result("asf", "audio/x-ms-asf")
			}
			if bytes.Equal(streamType, []byte{0xC0, 0xEF, 0x19, 0xBC, 0x4D, 0x5B, 0xCF, 0x11, 0xA8, 0xFD, 0x00, 0x80, 0x5F, 0x5C, 0x44, 0x2B}) {
				// Found video
				return result("asf", "video/x-ms-asf")
			}

			break
		}

		// Skip the object payload, clamped to the remaining stream
		skip := int64(objSize) - 24
		if remaining := p.size - p.tok.Position(); skip > remaining {
			skip = remaining
		}
		_, err = p.tok.Ignore(skip)
		if err != nil {
			return nil, err
		}
	}

	// Default to the generic ASF extension
	return result("asf", "application/vnd.ms-asf")
}

// parsePNG walks the PNG chunks: an acTL chunk before the first IDAT marks
// an animated PNG.
func (p *parser) parsePNG() (*FileType, error) {
	_, err := p.tok.Ignore(8) // PNG signature
	if err != nil {
		return nil, err
	}

	chunk := make([]byte, 8)
	for {
		_, err = p.tok.ReadBuffer(chunk, nil)
		if errors.Is(err, tokenizer.ErrEndOfStream) {
			break
		}
		if err != nil {
			return nil, err
		}

		length := int64(binary.BigEndian.Uint32(chunk[0:4]))
		if length > math.MaxInt32 {
			// Invalid chunk length
			return nil, nil
		}

		switch string(chunk[4:8]) {
		case "IDAT":
			return result("png", "image/png")
		case "acTL":
			return result("apng", "image/apng")
		}

		_, err = p.tok.Ignore(length + 4) // chunk data + CRC
		if err != nil {
			return nil, err
		}

		if p.tok.Position()+8 >= p.size {
			break
		}
	}

	return result("png", "image/png")
}

// parseJP2 reads the brand of a JPEG 2000 family file.
func (p *parser) parseJP2() (*FileType, error) {
	brand := make([]byte, 4)
	_, err := p.tok.PeekBuffer(brand, &tokenizer.ReadOptions{Position: 20})
	if err != nil {
		return nil, err
	}

	switch string(brand) {
	case "jp2 ":
		return result("jp2", "image/jp2")
	case "jpx ":
		return result("jpx", "image/jpx")
	case "jpm ":
		return result("jpm", "image/jpm")
	case "mjp2":
		return result("mj2", "image/mj2")
	default:
		return nil, nil
	}
}

// parseAr tells Debian packages apart from plain Unix archives.
func (p *parser) parseAr() (*FileType, error) {
	name := make([]byte, 13)
	_, err := p.tok.PeekBuffer(name, &tokenizer.ReadOptions{Position: 8})
	if errors.Is(err, tokenizer.ErrEndOfStream) {
		return result("ar", "application/x-unix-archive")
	}
	if err != nil {
		return nil, err
	}
	if string(name) == "debian-binary" {
		return result("deb", "application/x-deb")
	}
	return result("ar", "application/x-unix-archive")
}

// parseASAR checks whether a Chromium Pickle is an ASAR archive by parsing
// the JSON index it carries. Parse failures mean "not ASAR", not an error.
func (p *parser) parseASAR() (*FileType, error) {
	jsonSize := binary.LittleEndian.Uint32(p.buf[12:16])
	if jsonSize <= 12 || int64(jsonSize)+16 > sampleBufferSize {
		return nil, nil
	}

	err := p.sample(int(jsonSize) + 16)
	if err != nil {
		return nil, err
	}
	if p.n < int(jsonSize)+16 {
		return nil, nil
	}

	var index map[string]any
	if json.Unmarshal(p.buf[16:16+jsonSize], &index) != nil {
		return nil, nil
	}
	if _, ok := index["files"]; ok {
		return result("asar", "application/x-asar")
	}
	return nil, nil
}

// tarHeaderChecksumMatches verifies the checksum of a 512-byte TAR header:
// the octal field at offset 148 must equal the unsigned sum of all header
// bytes with the checksum field itself counted as spaces.
func tarHeaderChecksumMatches(header []byte) bool {
	start := 148
	end := 154
	if idx := bytes.IndexByte(header[start:end], 0x00); idx > -1 {
		end = start + idx
	}
	readSum, err := strconv.ParseUint(strings.TrimSpace(string(header[start:end])), 8, 64)
	if err != nil {
		return false
	}

	var sum uint64 = 8 * 0x20 // the checksum field itself, as spaces
	for _, b := range header[0:148] {
		sum += uint64(b)
	}
	for _, b := range header[156:512] {
		sum += uint64(b)
	}

	return readSum == sum
}

// bytesToUintBE decodes a big-endian unsigned integer of up to 8 bytes.
func bytesToUintBE(b []byte) uint64 {
	var v uint64
	for _, x := range b {
		v = v<<8 | uint64(x)
	}
	return v
}
