package beatmap

import "encoding/binary"

func md5Key(md5 string) []byte {
	// bm/md5/{md5}
	b := make([]byte, 0, len(md5)+8)
	b = append(b, 'b', 'm', '/', 'm', 'd', '5', '/')
	b = append(b, md5...)
	return b
}

func idKey(id int64) []byte {
	// bm/id/{id_be8} -> md5
	b := make([]byte, 0, 6+8)
	b = append(b, 'b', 'm', '/', 'i', 'd', '/')
	var n [8]byte
	binary.BigEndian.PutUint64(n[:], uint64(id))
	b = append(b, n[:]...)
	return b
}
