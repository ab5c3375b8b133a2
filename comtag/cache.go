package comtag

import (
	"container/list"
	"sync"

	"github.com/parallelmesh/amrx/box"
	"github.com/parallelmesh/amrx/distmap"
	"github.com/parallelmesh/amrx/ivec"
	"github.com/parallelmesh/amrx/xpdesc"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	cacheHits = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "amrx", Subsystem: "plancache", Name: "hits_total",
		Help: "FB/CPC plan cache hits.",
	})
	cacheMisses = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "amrx", Subsystem: "plancache", Name: "misses_total",
		Help: "FB/CPC plan cache misses.",
	})
	cacheEntries = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "amrx", Subsystem: "plancache", Name: "entries",
		Help: "Number of plans currently cached.",
	})
)

func init() {
	prometheus.MustRegister(cacheHits, cacheMisses, cacheEntries)
}

// fbKey is the structural cache key for an FBPlan: spec.md invariant
// (c) says plans are pure functions of BA, DM, nghost, periodicity, and
// variant flags, so those (plus myRank, since the same inputs bin
// differently per rank) are exactly the key.
type fbKey struct {
	ba              *box.BoxArray
	dm              *distmap.DistributionMap
	nghost          ivec.IntVect
	period          box.Periodicity
	cross           bool
	periodicityOnly bool
	myRank          int
}

type cpcKey struct {
	dstBA, srcBA     *box.BoxArray
	dstDM, srcDM     *distmap.DistributionMap
	snghost, dnghost ivec.IntVect
	period           box.Periodicity
	myRank           int
}

type cacheEntry struct {
	key   any
	value any
}

// PlanCache is a bounded LRU of FBPlan/CPCPlan values keyed by their
// structural key (spec.md §4.1's "bounded LRU keyed by the plan's
// structural key").
type PlanCache struct {
	mu       sync.Mutex
	capacity int
	ll       *list.List
	items    map[any]*list.Element
}

// NewPlanCache builds a PlanCache holding at most capacity entries.
func NewPlanCache(capacity int) *PlanCache {
	return &PlanCache{capacity: capacity, ll: list.New(), items: map[any]*list.Element{}}
}

func (c *PlanCache) getOrBuild(key any, build func() any) any {
	c.mu.Lock()
	if el, ok := c.items[key]; ok {
		c.ll.MoveToFront(el)
		v := el.Value.(*cacheEntry).value
		c.mu.Unlock()
		cacheHits.Inc()
		return v
	}
	c.mu.Unlock()

	cacheMisses.Inc()
	v := build()

	c.mu.Lock()
	defer c.mu.Unlock()
	if el, ok := c.items[key]; ok {
		// built concurrently by another caller; keep the existing one
		// so every caller observes the same *FBPlan/*CPCPlan pointer.
		c.ll.MoveToFront(el)
		return el.Value.(*cacheEntry).value
	}
	el := c.ll.PushFront(&cacheEntry{key: key, value: v})
	c.items[key] = el
	if c.ll.Len() > c.capacity {
		back := c.ll.Back()
		c.ll.Remove(back)
		delete(c.items, back.Value.(*cacheEntry).key)
	}
	cacheEntries.Set(float64(c.ll.Len()))
	return v
}

// Clear empties the cache; called from xpdesc.Finalize via Clearable.
func (c *PlanCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ll.Init()
	c.items = map[any]*list.Element{}
	cacheEntries.Set(0)
}

var defaultCache = NewPlanCache(512)

func init() {
	xpdesc.RegisterCache(defaultCache)
}

// GetFB returns the cached FBPlan for these inputs, building and
// caching one if absent.
func GetFB(ba *box.BoxArray, dm *distmap.DistributionMap, nghost ivec.IntVect, period box.Periodicity, cross, periodicityOnly bool, myRank int) *FBPlan {
	key := fbKey{ba: ba, dm: dm, nghost: nghost, period: period, cross: cross, periodicityOnly: periodicityOnly, myRank: myRank}
	return defaultCache.getOrBuild(key, func() any {
		return BuildFB(ba, dm, nghost, period, cross, periodicityOnly, myRank)
	}).(*FBPlan)
}

// GetCPC returns the cached CPCPlan for these inputs, building and
// caching one if absent.
func GetCPC(dstBA *box.BoxArray, dstDM *distmap.DistributionMap, srcBA *box.BoxArray, srcDM *distmap.DistributionMap, snghost, dnghost ivec.IntVect, period box.Periodicity, myRank int) *CPCPlan {
	key := cpcKey{dstBA: dstBA, dstDM: dstDM, srcBA: srcBA, srcDM: srcDM, snghost: snghost, dnghost: dnghost, period: period, myRank: myRank}
	return defaultCache.getOrBuild(key, func() any {
		return BuildCPC(dstBA, dstDM, srcBA, srcDM, snghost, dnghost, period, myRank)
	}).(*CPCPlan)
}
