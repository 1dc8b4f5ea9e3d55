package domain

// JoinQualifying attaches qualifying position and time to race rows matched
// on (year, race, code). Every race row is kept exactly once and in order;
// unmatched rows keep nil qualifying fields. When the qualifying side holds
// the same key more than once the first occurrence wins, so the join can
// never multiply race rows.
func JoinQualifying(race, quali []Row) []Row {
	byKey := make(map[Key]Row, len(quali))
	for _, q := range quali {
		if _, ok := byKey[q.Key()]; !ok {
			byKey[q.Key()] = q
		}
	}

	out := make([]Row, len(race))
	for i, r := range race {
		if q, ok := byKey[r.Key()]; ok {
			r.QualiPos = q.QualiPos
			r.QualiTime = q.QualiTime
		}
		out[i] = r
	}
	return out
}
