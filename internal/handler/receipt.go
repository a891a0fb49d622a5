package handler

import (
	"net/http"

	"github.com/pamoja-connect/Chama-manager/internal/receipt"
	"github.com/pamoja-connect/Chama-manager/internal/util"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// ReceiptHandler looks digital receipts up by receipt number.
type ReceiptHandler struct {
	Receipts *receipt.Issuer
}

func NewReceiptHandler(receipts *receipt.Issuer) *ReceiptHandler {
	return &ReceiptHandler{Receipts: receipts}
}

func (h *ReceiptHandler) Get(c *gin.Context) {
	number := c.Param("number")
	rec, err := h.Receipts.Get(number)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			util.Error(c, http.StatusNotFound, util.CodeNotFound, "receipt not found")
		} else {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to load receipt")
		}
		return
	}
	util.Success(c, util.Response{
		"receipt": rec,
		"amount":  util.FormatCurrency(rec.AmountCents),
	})
}
