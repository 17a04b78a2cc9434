package controllers

import (
	"net/http"
	"strconv"

	"github.com/Njoroge/sokoni-api/utils"
	"github.com/gin-gonic/gin"
	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// Base fee plus a per-kilogram rate, quoted in USD and converted to KES for
// the response. Order totals never include this estimate.
var (
	shippingBaseFeeUSD  = decimal.NewFromFloat(4.99)
	shippingPerKgFeeUSD = decimal.NewFromFloat(1.50)
)

type ShippingController struct {
	client  *resty.Client
	rateURL string
}

func NewShippingController(client *resty.Client, rateURL string) *ShippingController {
	return &ShippingController{client: client, rateURL: rateURL}
}

func (c *ShippingController) EstimateShipping(ctx *gin.Context) {
	weight, err := strconv.ParseFloat(ctx.DefaultQuery("weight", "1"), 64)
	if err != nil || weight <= 0 {
		sendErrorResponse(ctx, http.StatusBadRequest, "Invalid weight")
		return
	}

	feeUSD := shippingBaseFeeUSD.Add(shippingPerKgFeeUSD.Mul(decimal.NewFromFloat(weight)))

	feeKES, err := utils.ConvertUSDToKES(c.client, c.rateURL, feeUSD)
	if err != nil {
		log.Error().Err(err).Msg("shipping estimate failed")
		sendErrorResponse(ctx, http.StatusServiceUnavailable, "Shipping estimate unavailable, try again later")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"currency": "KES",
		"fee":      feeKES,
		"feeUsd":   feeUSD,
	})
}
