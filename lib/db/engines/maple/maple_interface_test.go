package maple

import (
	"testing"

	"github.com/ValentinKolb/kvlayout/lib/db"
	dbtesting "github.com/ValentinKolb/kvlayout/lib/db/testing"
)

func Test(t *testing.T) {
	dbtesting.RunSlotDBTests(t, "MapleDB", func() db.SlotDB {
		return NewMapleDB(nil)
	})
}

func TestSingleShard(t *testing.T) {
	dbtesting.RunSlotDBTests(t, "MapleDB(1 shard)", func() db.SlotDB {
		return NewMapleDB(&DBOptions{NumShards: 1})
	})
}

func Benchmark(b *testing.B) {
	dbtesting.RunSlotDBBenchmarks(b, "MapleDB", func() db.SlotDB {
		return NewMapleDB(nil)
	})
}
