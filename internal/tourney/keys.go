package tourney

import "github.com/DAYGoodTime/nogu/pkg/id"

func userKey(uid id.ID) []byte {
	// tn/user/{id16}
	b := make([]byte, 0, 8+16)
	b = append(b, 't', 'n', '/', 'u', 's', 'e', 'r', '/')
	b = append(b, uid[:]...)
	return b
}

func userPrefix() []byte {
	return []byte("tn/user/")
}

func userNameKey(username string) []byte {
	// tn/uname/{username_lower} -> id16
	b := make([]byte, 0, len(username)+9)
	b = append(b, 't', 'n', '/', 'u', 'n', 'a', 'm', 'e', '/')
	b = append(b, username...)
	return b
}

func userEmailKey(email string) []byte {
	// tn/uemail/{email_lower} -> id16
	b := make([]byte, 0, len(email)+10)
	b = append(b, 't', 'n', '/', 'u', 'e', 'm', 'a', 'i', 'l', '/')
	b = append(b, email...)
	return b
}

func acctKey(uid, aid id.ID) []byte {
	// tn/acct/{user16}/{acct16}
	b := make([]byte, 0, 8+16+1+16)
	b = append(b, 't', 'n', '/', 'a', 'c', 'c', 't', '/')
	b = append(b, uid[:]...)
	b = append(b, '/')
	b = append(b, aid[:]...)
	return b
}

func acctPrefix(uid id.ID) []byte {
	b := make([]byte, 0, 8+16+1)
	b = append(b, 't', 'n', '/', 'a', 'c', 'c', 't', '/')
	b = append(b, uid[:]...)
	b = append(b, '/')
	return b
}

func teamKey(tid id.ID) []byte {
	// tn/team/{id16}
	b := make([]byte, 0, 8+16)
	b = append(b, 't', 'n', '/', 't', 'e', 'a', 'm', '/')
	b = append(b, tid[:]...)
	return b
}

func teamPrefix() []byte {
	return []byte("tn/team/")
}

func memberKey(tid, uid id.ID) []byte {
	// tn/member/{team16}/{user16}
	b := make([]byte, 0, 10+16+1+16)
	b = append(b, 't', 'n', '/', 'm', 'e', 'm', 'b', 'e', 'r', '/')
	b = append(b, tid[:]...)
	b = append(b, '/')
	b = append(b, uid[:]...)
	return b
}

func memberPrefix(tid id.ID) []byte {
	b := make([]byte, 0, 10+16+1)
	b = append(b, 't', 'n', '/', 'm', 'e', 'm', 'b', 'e', 'r', '/')
	b = append(b, tid[:]...)
	b = append(b, '/')
	return b
}

func userTeamKey(uid, tid id.ID) []byte {
	// tn/uteam/{user16}/{team16} -> team16
	b := make([]byte, 0, 9+16+1+16)
	b = append(b, 't', 'n', '/', 'u', 't', 'e', 'a', 'm', '/')
	b = append(b, uid[:]...)
	b = append(b, '/')
	b = append(b, tid[:]...)
	return b
}

func userTeamPrefix(uid id.ID) []byte {
	b := make([]byte, 0, 9+16+1)
	b = append(b, 't', 'n', '/', 'u', 't', 'e', 'a', 'm', '/')
	b = append(b, uid[:]...)
	b = append(b, '/')
	return b
}

func poolKey(pid id.ID) []byte {
	// tn/pool/{id16}
	b := make([]byte, 0, 8+16)
	b = append(b, 't', 'n', '/', 'p', 'o', 'o', 'l', '/')
	b = append(b, pid[:]...)
	return b
}

func poolPrefix() []byte {
	return []byte("tn/pool/")
}

func poolMapKey(pid, mid id.ID) []byte {
	// tn/poolmap/{pool16}/{entry16}
	b := make([]byte, 0, 11+16+1+16)
	b = append(b, 't', 'n', '/', 'p', 'o', 'o', 'l', 'm', 'a', 'p', '/')
	b = append(b, pid[:]...)
	b = append(b, '/')
	b = append(b, mid[:]...)
	return b
}

func poolMapPrefix(pid id.ID) []byte {
	b := make([]byte, 0, 11+16+1)
	b = append(b, 't', 'n', '/', 'p', 'o', 'o', 'l', 'm', 'a', 'p', '/')
	b = append(b, pid[:]...)
	b = append(b, '/')
	return b
}

func stageKey(sid id.ID) []byte {
	// tn/stage/{id16}
	b := make([]byte, 0, 9+16)
	b = append(b, 't', 'n', '/', 's', 't', 'a', 'g', 'e', '/')
	b = append(b, sid[:]...)
	return b
}

func teamStageKey(tid, sid id.ID) []byte {
	// tn/tstage/{team16}/{stage16} -> stage16
	b := make([]byte, 0, 10+16+1+16)
	b = append(b, 't', 'n', '/', 't', 's', 't', 'a', 'g', 'e', '/')
	b = append(b, tid[:]...)
	b = append(b, '/')
	b = append(b, sid[:]...)
	return b
}

func teamStagePrefix(tid id.ID) []byte {
	b := make([]byte, 0, 10+16+1)
	b = append(b, 't', 'n', '/', 't', 's', 't', 'a', 'g', 'e', '/')
	b = append(b, tid[:]...)
	b = append(b, '/')
	return b
}

func stageMapKey(sid id.ID, md5 string) []byte {
	// tn/stagemap/{stage16}/{md5}
	b := make([]byte, 0, 12+16+1+len(md5))
	b = append(b, 't', 'n', '/', 's', 't', 'a', 'g', 'e', 'm', 'a', 'p', '/')
	b = append(b, sid[:]...)
	b = append(b, '/')
	b = append(b, md5...)
	return b
}

func stageMapPrefix(sid id.ID) []byte {
	b := make([]byte, 0, 12+16+1)
	b = append(b, 't', 'n', '/', 's', 't', 'a', 'g', 'e', 'm', 'a', 'p', '/')
	b = append(b, sid[:]...)
	b = append(b, '/')
	return b
}

func scoreKey(scid id.ID) []byte {
	// tn/score/{id16}
	b := make([]byte, 0, 9+16)
	b = append(b, 't', 'n', '/', 's', 'c', 'o', 'r', 'e', '/')
	b = append(b, scid[:]...)
	return b
}

func stageScoreKey(sid, scid id.ID) []byte {
	// tn/sscore/{stage16}/{score16} -> score16
	b := make([]byte, 0, 10+16+1+16)
	b = append(b, 't', 'n', '/', 's', 's', 'c', 'o', 'r', 'e', '/')
	b = append(b, sid[:]...)
	b = append(b, '/')
	b = append(b, scid[:]...)
	return b
}

func stageScorePrefix(sid id.ID) []byte {
	b := make([]byte, 0, 10+16+1)
	b = append(b, 't', 'n', '/', 's', 's', 'c', 'o', 'r', 'e', '/')
	b = append(b, sid[:]...)
	b = append(b, '/')
	return b
}

func userScoreKey(uid, scid id.ID) []byte {
	// tn/uscore/{user16}/{score16} -> score16
	b := make([]byte, 0, 10+16+1+16)
	b = append(b, 't', 'n', '/', 'u', 's', 'c', 'o', 'r', 'e', '/')
	b = append(b, uid[:]...)
	b = append(b, '/')
	b = append(b, scid[:]...)
	return b
}

func userScorePrefix(uid id.ID) []byte {
	b := make([]byte, 0, 10+16+1)
	b = append(b, 't', 'n', '/', 'u', 's', 'c', 'o', 'r', 'e', '/')
	b = append(b, uid[:]...)
	b = append(b, '/')
	return b
}
