package edp

import (
	"github.com/runconduit/rtps-discovery/pkg/locator"
	"github.com/runconduit/rtps-discovery/pkg/proxy"
	"github.com/runconduit/rtps-discovery/pkg/qos"
	"github.com/runconduit/rtps-discovery/pkg/rtpsiface"
)

// PairLocalWriterWithDiscoveredReader implements §4.4.1's
// pair_local_writer_with_discovered_reader: if topic/type/kind match and
// rdata is alive, install rdata as a send target (stateless) or matched
// reader (stateful), and fire OnPublicationMatched exactly once per newly
// successful pairing.
func PairLocalWriterWithDiscoveredReader(w rtpsiface.LocalWriter, rdata proxy.DiscoveredReaderData) {
	if w.TopicName() != rdata.TopicName || w.TypeName() != rdata.TypeName || w.TopicKind() != rdata.TopicKind {
		return
	}
	if !rdata.IsAlive {
		return
	}

	added := false
	switch w.StateKind() {
	case rtpsiface.Stateless:
		if rdata.QoS.Reliability.Kind == qos.BestEffort {
			for _, loc := range append(append([]locator.Locator{}, rdata.UnicastLocators...), rdata.MulticastLocators...) {
				if err := w.AddReaderLocator(loc); err == nil {
					added = true
				}
			}
		}
	case rtpsiface.Stateful:
		if qos.CompatibleReliability(w.QoS().Reliability.Kind, rdata.QoS.Reliability.Kind) {
			rp := rtpsiface.ReaderProxy{
				GUID:              rdata.GUID,
				UnicastLocators:   rdata.UnicastLocators,
				MulticastLocators: rdata.MulticastLocators,
				ExpectsInlineQoS:  rdata.ExpectsInlineQoS,
			}
			if err := w.MatchedReaderAdd(rp); err == nil {
				added = true
			}
		}
	}

	if added {
		w.OnPublicationMatched(rdata.GUID)
	}
}

// PairLocalReaderWithDiscoveredWriter implements the symmetric
// pair_local_reader_with_discovered_writer: a RELIABLE local reader
// requires a RELIABLE remote writer; a BEST_EFFORT reader accepts either.
func PairLocalReaderWithDiscoveredWriter(r rtpsiface.LocalReader, wdata proxy.DiscoveredWriterData) {
	if r.TopicName() != wdata.TopicName || r.TypeName() != wdata.TypeName || r.TopicKind() != wdata.TopicKind {
		return
	}
	if !wdata.IsAlive {
		return
	}
	if !qos.CompatibleReliability(wdata.QoS.Reliability.Kind, r.QoS().Reliability.Kind) {
		return
	}

	wp := rtpsiface.WriterProxy{
		GUID:              wdata.GUID,
		UnicastLocators:   wdata.UnicastLocators,
		MulticastLocators: wdata.MulticastLocators,
	}
	if err := r.MatchedWriterAdd(wp); err == nil {
		r.OnSubscriptionMatched(wdata.GUID)
	}
}
