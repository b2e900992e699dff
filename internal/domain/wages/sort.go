package wages

import "sort"

func sortEntries(entries []ProductionEntry) {
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].WorkerID == entries[j].WorkerID {
			return entries[i].CapTypeID < entries[j].CapTypeID
		}
		return entries[i].WorkerID < entries[j].WorkerID
	})
}
