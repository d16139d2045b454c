package handlers

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"hash"
	"net/http"
	"strings"
	"time"

	"github.com/etuitionbd/server/internal/domain/tuition"
	"github.com/etuitionbd/server/internal/domain/user"
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// listingVersion fingerprints a public listing by the rows it holds and when each
// last changed. Every write path bumps updatedAt, so equal versions mean equal bodies
// for practical purposes, hence the weak validator.
type listingVersion struct {
	h hash.Hash
}

func newListingVersion(scope string) *listingVersion {
	v := &listingVersion{h: sha256.New()}
	v.h.Write([]byte(scope))
	return v
}

func (v *listingVersion) row(id primitive.ObjectID, status string, updatedAt time.Time) {
	v.h.Write(id[:])
	v.h.Write([]byte(status))
	v.int(updatedAt.UnixNano())
}

func (v *listingVersion) page(p tuition.Pagination) {
	v.int(int64(p.Page))
	v.int(int64(p.Limit))
	v.int(p.Total)
}

func (v *listingVersion) int(n int64) {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], uint64(n))
	v.h.Write(b[:])
}

func (v *listingVersion) etag() string {
	return `W/"` + hex.EncodeToString(v.h.Sum(nil)[:16]) + `"`
}

func tuitionsVersion(scope string, items []tuition.Tuition) *listingVersion {
	v := newListingVersion(scope)
	for _, t := range items {
		v.row(t.ID, t.Status, t.UpdatedAt)
	}
	return v
}

func tutorsVersion(scope string, items []user.User) *listingVersion {
	v := newListingVersion(scope)
	for _, u := range items {
		v.row(u.ID, u.Status, u.UpdatedAt)
	}
	return v
}

// respondListing answers a cacheable listing, or 304 when the client already holds
// this version.
func respondListing(ctx *gin.Context, v *listingVersion, payload any) {
	etag := v.etag()

	ctx.Header("ETag", etag)
	ctx.Header("Cache-Control", "no-cache")

	if notModified(ctx.GetHeader("If-None-Match"), etag) {
		ctx.Status(http.StatusNotModified)
		return
	}

	ctx.JSON(http.StatusOK, payload)
}

// notModified applies the weak comparison If-None-Match calls for.
func notModified(header, etag string) bool {
	header = strings.TrimSpace(header)
	if header == "" {
		return false
	}
	if header == "*" {
		return true
	}

	current := opaqueTag(etag)
	for _, candidate := range strings.Split(header, ",") {
		if opaqueTag(candidate) == current {
			return true
		}
	}
	return false
}

func opaqueTag(raw string) string {
	return strings.TrimPrefix(strings.TrimSpace(raw), "W/")
}
